package mapping

import "context"

// KeyGenerator obtains database-generated keys around statement execution.
// Implementations live in the execution layer; the descriptor only selects
// the strategy.
type KeyGenerator interface {
	ProcessBefore(ctx context.Context, stmt *MappedStatement, parameter any) error
	ProcessAfter(ctx context.Context, stmt *MappedStatement, parameter any) error
}

// NoKeyGenerator is the strategy for statements that generate no keys.
type NoKeyGenerator struct{}

// ProcessBefore is a no-op.
func (NoKeyGenerator) ProcessBefore(ctx context.Context, stmt *MappedStatement, parameter any) error {
	return nil
}

// ProcessAfter is a no-op.
func (NoKeyGenerator) ProcessAfter(ctx context.Context, stmt *MappedStatement, parameter any) error {
	return nil
}
