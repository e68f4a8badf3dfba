// Package codec serializes the workflow graph to and from its persistable
// document form, validating documents on load and repairing malformed
// entries instead of rejecting whole documents.
package codec
