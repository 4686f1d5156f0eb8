package database

import (
	"github.com/gaborage/go-datamap/database/internal/builder"
)

// Query is a chainable SELECT, GET, UPDATE or DELETE. See DB.Query.
type Query = builder.Query

type (
	Mode          = builder.Mode
	Predicate     = builder.Predicate
	Match         = builder.Match
	Comparison    = builder.Comparison
	InSet         = builder.InSet
	NullCheck     = builder.NullCheck
	RawPredicate  = builder.RawPredicate
	Compound      = builder.Compound
	Negation      = builder.Negation
	Expression    = builder.Expression
	Aggregate     = builder.Aggregate
	Order         = builder.Order
	JoinCondition = builder.JoinCondition
)

const (
	ModeNone   = builder.ModeNone
	ModeSelect = builder.ModeSelect
	ModeGet    = builder.ModeGet
	ModeInsert = builder.ModeInsert
	ModeUpdate = builder.ModeUpdate
	ModeDelete = builder.ModeDelete
)

// Predicate helpers.
var (
	Eq      = builder.Eq
	NotEq   = builder.NotEq
	Lt      = builder.Lt
	Lte     = builder.Lte
	Gt      = builder.Gt
	Gte     = builder.Gte
	Like    = builder.Like
	ILike   = builder.ILike
	In      = builder.In
	NotIn   = builder.NotIn
	IsNull  = builder.IsNull
	NotNull = builder.NotNull
	And     = builder.And
	Or      = builder.Or
	Not     = builder.Not
	Raw     = builder.Raw
)

// Selection, ordering and join helpers.
var (
	Expr     = builder.Expr
	Count    = builder.Count
	CountAll = builder.CountAll
	Sum      = builder.Sum
	Avg      = builder.Avg
	Min      = builder.Min
	Max      = builder.Max
	Asc      = builder.Asc
	Desc     = builder.Desc
	On       = builder.On
)
