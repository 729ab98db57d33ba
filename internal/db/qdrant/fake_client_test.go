package qdrant

import (
	"context"
	"errors"

	"github.com/qdrant/go-client/qdrant"
)

type fakeClient struct {
	existsFn     func(ctx context.Context, name string) (bool, error)
	createFn     func(ctx context.Context, req *qdrant.CreateCollection) error
	deleteFn     func(ctx context.Context, name string) error
	infoFn       func(ctx context.Context, name string) (*qdrant.CollectionInfo, error)
	fieldIndexFn func(ctx context.Context, req *qdrant.CreateFieldIndexCollection) (*qdrant.UpdateResult, error)
	upsertFn     func(ctx context.Context, req *qdrant.UpsertPoints) (*qdrant.UpdateResult, error)
	queryFn      func(ctx context.Context, req *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error)
	healthFn     func(ctx context.Context) (*qdrant.HealthCheckReply, error)
}

var errNotMocked = errors.New("not mocked")

func (f *fakeClient) CollectionExists(ctx context.Context, name string) (bool, error) {
	if f.existsFn != nil {
		return f.existsFn(ctx, name)
	}
	return false, errNotMocked
}

func (f *fakeClient) CreateCollection(ctx context.Context, req *qdrant.CreateCollection) error {
	if f.createFn != nil {
		return f.createFn(ctx, req)
	}
	return errNotMocked
}

func (f *fakeClient) DeleteCollection(ctx context.Context, name string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, name)
	}
	return errNotMocked
}

func (f *fakeClient) GetCollectionInfo(ctx context.Context, name string) (*qdrant.CollectionInfo, error) {
	if f.infoFn != nil {
		return f.infoFn(ctx, name)
	}
	return nil, errNotMocked
}

func (f *fakeClient) CreateFieldIndex(
	ctx context.Context, req *qdrant.CreateFieldIndexCollection,
) (*qdrant.UpdateResult, error) {
	if f.fieldIndexFn != nil {
		return f.fieldIndexFn(ctx, req)
	}
	return nil, errNotMocked
}

func (f *fakeClient) Upsert(ctx context.Context, req *qdrant.UpsertPoints) (*qdrant.UpdateResult, error) {
	if f.upsertFn != nil {
		return f.upsertFn(ctx, req)
	}
	return nil, errNotMocked
}

func (f *fakeClient) Query(ctx context.Context, req *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error) {
	if f.queryFn != nil {
		return f.queryFn(ctx, req)
	}
	return nil, errNotMocked
}

func (f *fakeClient) HealthCheck(ctx context.Context) (*qdrant.HealthCheckReply, error) {
	if f.healthFn != nil {
		return f.healthFn(ctx)
	}
	return nil, errNotMocked
}

func (f *fakeClient) Close() error { return nil }

func newTestStore(c *fakeClient) *Store {
	return &Store{client: c, prefix: "t_", ef: 64}
}
