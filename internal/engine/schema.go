package engine

import (
	"github.com/graph-gophers/graphql-go"

	"mixup-graphql-api/internal/catalog"
)

const typeDefs = `
	type ListItem {
		id: ID!
		name: String!
	}
	type List {
		id: ID!
		name: String!
		items: [ListItem]!
	}
	type Query {
		lists: [List]!
		list(id: ID!): List
	}
`

type queryResolver struct {
	store *catalog.Store
}

func (r *queryResolver) Lists() []*listResolver {
	lists := r.store.Lists()
	out := make([]*listResolver, 0, len(lists))
	for _, l := range lists {
		out = append(out, &listResolver{list: l})
	}
	return out
}

func (r *queryResolver) List(args struct{ ID graphql.ID }) *listResolver {
	l, ok := r.store.List(string(args.ID))
	if !ok {
		return nil
	}
	return &listResolver{list: l}
}

type listResolver struct {
	list catalog.List
}

func (r *listResolver) ID() graphql.ID { return graphql.ID(r.list.ID) }

func (r *listResolver) Name() string { return r.list.Name }

func (r *listResolver) Items() []*itemResolver {
	out := make([]*itemResolver, 0, len(r.list.Items))
	for _, it := range r.list.Items {
		out = append(out, &itemResolver{item: it})
	}
	return out
}

type itemResolver struct {
	item catalog.Item
}

func (r *itemResolver) ID() graphql.ID { return graphql.ID(r.item.ID) }

func (r *itemResolver) Name() string { return r.item.Name }
