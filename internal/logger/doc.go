// Package logger wraps zap to provide:
//   - a global sugared logger writing to the console,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level configuration and parsing,
//   - convenience functions (Infof, WarnKV, etc.).
//
// Services receive a context and pull the logger from it, so every message of a
// run carries the same name and fields.
package logger
