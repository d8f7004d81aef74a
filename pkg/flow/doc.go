// Package flow holds the in-memory model of a WhatsApp Flow JSON document:
// screens, their single layout, the component tree, inline
// `on-click-action` actions and the legacy top-level `actions` array
// addressed by Button `action_id`.
//
// Parse builds the structural tree and tags every component by its `type`
// discriminator. Tags the package does not recognise become KindUnknown
// components whose compacted raw object is preserved, so documents produced
// by newer generators survive an import/export cycle. Keys the model does
// not type (style, src, url, screen `data`, ...) are kept in Props/Extra maps
// for the same reason. Cross references (navigate targets, action ids,
// form/footer placement) are not checked here; see package rules.
//
// Serialize is the inverse of Parse: parse(serialize(d)) is structurally
// equal to d.
package flow
