// Package service provides application-level services for managing users,
// topics and subscriptions. The richer orchestration around evaluation
// cycles and daily feeds lives in the evaluation and feed sub-packages.
package service
