// Package logging builds the zap logger used across lawgiver.
//
// The logger writes structured JSON by default; the console format is
// meant for interactive runs. Collaborator packages receive the
// *zap.Logger directly.
package logging
