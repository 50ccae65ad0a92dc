// Package mocks provides centralized mock implementations for testing.
//
// Store mocks share an in-memory Memory backend so that users, tokens and
// tasks stay consistent with each other, the way the Postgres stores do.
// Every mock method can be overridden through its Fn field:
//
//	mem := mocks.NewMemory()
//	users := mocks.NewMockUserStore(mem)
//	users.EmailExistsFn = func(ctx context.Context, email string) (bool, error) {
//	    return false, errors.New("db down")
//	}
package mocks
