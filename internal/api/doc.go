// Package api provides the HTTP handlers for the learning API: account
// registration and login, the topic catalog and subscriptions, evaluation
// cycle submission, progress retrieval and the daily study feed.
package api
