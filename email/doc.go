// Package email delivers challenge messages. [MockClient] logs each message
// instead of sending it and keeps a copy for inspection.
package email
