// Package domain contains the core entities of the task list service (users,
// auth tokens and tasks) together with their validation rules. It is
// independent of storage and transport.
package domain
