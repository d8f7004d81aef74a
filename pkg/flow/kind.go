package flow

import "sort"

// Kind identifies a recognised component variant. The zero value is
// KindUnknown.
type Kind string

const (
	KindUnknown            Kind = ""
	KindTextHeading        Kind = "TextHeading"
	KindTextSubheading     Kind = "TextSubheading"
	KindTextBody           Kind = "TextBody"
	KindTextCaption        Kind = "TextCaption"
	KindText               Kind = "Text"
	KindHeadline           Kind = "Headline"
	KindImage              Kind = "Image"
	KindButton             Kind = "Button"
	KindTextInput          Kind = "TextInput"
	KindTextArea           Kind = "TextArea"
	KindCheckboxGroup      Kind = "CheckboxGroup"
	KindRadioButtonsGroup  Kind = "RadioButtonsGroup"
	KindDropdown           Kind = "Dropdown"
	KindDatePicker         Kind = "DatePicker"
	KindPhotoPicker        Kind = "PhotoPicker"
	KindDocumentPicker     Kind = "DocumentPicker"
	KindOptIn              Kind = "OptIn"
	KindEmbeddedLink       Kind = "EmbeddedLink"
	KindFooter             Kind = "Footer"
	KindScreenConfirmation Kind = "ScreenConfirmation"
	KindForm               Kind = "Form"
)

// kindByTag maps wire tags to kinds. Generators disagree on the radio group
// spelling, both resolve to the same variant.
var kindByTag = map[string]Kind{
	"TextHeading":        KindTextHeading,
	"TextSubheading":     KindTextSubheading,
	"TextBody":           KindTextBody,
	"TextCaption":        KindTextCaption,
	"Text":               KindText,
	"Headline":           KindHeadline,
	"Image":              KindImage,
	"Button":             KindButton,
	"TextInput":          KindTextInput,
	"TextArea":           KindTextArea,
	"CheckboxGroup":      KindCheckboxGroup,
	"RadioButtonsGroup":  KindRadioButtonsGroup,
	"RadioButtonGroup":   KindRadioButtonsGroup,
	"Dropdown":           KindDropdown,
	"DatePicker":         KindDatePicker,
	"PhotoPicker":        KindPhotoPicker,
	"DocumentPicker":     KindDocumentPicker,
	"OptIn":              KindOptIn,
	"EmbeddedLink":       KindEmbeddedLink,
	"Footer":             KindFooter,
	"ScreenConfirmation": KindScreenConfirmation,
	"Form":               KindForm,
}

// KindOf resolves a wire tag. Unrecognised tags return KindUnknown.
func KindOf(tag string) Kind {
	return kindByTag[tag]
}

// Tags lists every recognised wire tag, aliases included, sorted.
func Tags() []string {
	out := make([]string, 0, len(kindByTag))
	for tag := range kindByTag {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// Known reports whether k is a recognised variant.
func (k Kind) Known() bool {
	return k != KindUnknown
}

// IsInput reports whether the variant captures a value and therefore must
// live inside a Form and carry a name.
func (k Kind) IsInput() bool {
	switch k {
	case KindTextInput, KindTextArea, KindCheckboxGroup, KindRadioButtonsGroup,
		KindDropdown, KindDatePicker, KindOptIn, KindPhotoPicker, KindDocumentPicker:
		return true
	default:
		return false
	}
}

// IsMediaPicker reports whether the variant uploads media.
func (k Kind) IsMediaPicker() bool {
	return k == KindPhotoPicker || k == KindDocumentPicker
}

// IsText reports whether the variant belongs to the text family.
func (k Kind) IsText() bool {
	switch k {
	case KindTextHeading, KindTextSubheading, KindTextBody, KindTextCaption, KindText, KindHeadline:
		return true
	default:
		return false
	}
}

// HasDataSource reports whether the variant is backed by an option list.
func (k Kind) HasDataSource() bool {
	switch k {
	case KindCheckboxGroup, KindRadioButtonsGroup, KindDropdown:
		return true
	default:
		return false
	}
}

// mediaBoundKeys returns the wire keys carrying the min/max upload counts.
func (k Kind) mediaBoundKeys() (string, string) {
	switch k {
	case KindPhotoPicker:
		return "min-uploaded-photos", "max-uploaded-photos"
	case KindDocumentPicker:
		return "min-uploaded-documents", "max-uploaded-documents"
	default:
		return "", ""
	}
}
