// Package preview renders a flow screen as styled terminal text, the way a
// phone would lay it out: one line group per component in document order,
// current form values filled in.
//
// Text coming from documents is treated as untrusted. Markup is stripped
// with a bluemonday strict policy before styling.
package preview
