// Package api exposes the learning path service over REST. Handlers decode
// and validate requests, call learningpath.Service and map its errors to
// status codes and client-safe messages.
package api
