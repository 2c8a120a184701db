package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/ghostnet/internal/models"
	"github.com/shenikar/ghostnet/internal/service"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/shenikar/ghostnet/internal/repository")

// querier - общее подмножество методов *pgxpool.Pool и pgx.Tx
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store - хранилище сущностей в PostgreSQL. Связи хранятся внешними
// ключами на стороне "многие", обратные коллекции вычисляются запросами.
type Store struct {
	pool *pgxpool.Pool
	db   querier
	inTx bool
}

// Compile-time check that Store implements service.Repository.
var _ service.Repository = (*Store)(nil)

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		pool: pool,
		db:   pool,
	}
}

// WithinTx выполняет fn в одной сериализуемой транзакции.
// Внутри транзакции повторный вызов выполняет fn в той же транзакции.
func (s *Store) WithinTx(ctx context.Context, fn func(tx service.Repository) error) error {
	if s.inTx {
		return fn(s)
	}

	ctx, span := tracer.Start(ctx, "postgres.within_tx")
	defer span.End()

	var fnErr error
	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{IsoLevel: pgx.Serializable}, func(tx pgx.Tx) error {
		fnErr = fn(&Store{pool: s.pool, db: tx, inTx: true})
		return fnErr
	})
	if fnErr != nil {
		span.RecordError(fnErr)
		return fnErr
	}
	if err != nil {
		return storeError(span, "transaction", err)
	}
	return nil
}

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func storeError(span trace.Span, op string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, op)
	return &models.StoreError{Op: op, Err: err}
}

// conditions собирает WHERE с позиционными параметрами
type conditions struct {
	clauses []string
	args    []any
}

// add добавляет условие; %d в clause заменяется номером параметра
func (c *conditions) add(clause string, arg any) {
	c.args = append(c.args, arg)
	c.clauses = append(c.clauses, fmt.Sprintf(clause, len(c.args)))
}

func (c *conditions) where() string {
	if len(c.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.clauses, " AND ")
}

// limit добавляет LIMIT/OFFSET, если задан размер страницы
func (c *conditions) limit(page, pageSize int) string {
	if pageSize < 1 {
		return ""
	}
	if page < 1 {
		page = 1
	}
	c.args = append(c.args, pageSize, (page-1)*pageSize)
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(c.args)-1, len(c.args))
}

func likePattern(s string) string {
	return "%" + strings.ToLower(s) + "%"
}
