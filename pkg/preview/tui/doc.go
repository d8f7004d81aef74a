// Package tui drives a simulator session interactively: it renders the
// active screen with the preview package, offers the screen's fields and
// clickables as a menu, and feeds the user's choices to the session.
//
// Prompts go through the PromptDriver interface. The default driver uses
// survey; tests script a stub.
package tui
