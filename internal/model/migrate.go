package model

// All lists the models managed by schema migration, parents first.
func All() []any {
	return []any{&Song{}, &Sponsor{}}
}
