package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiawesome/exa-people-search/internal/domain"
	"github.com/weiawesome/exa-people-search/internal/sink"
)

type fakeProvider struct {
	calls  int
	apiKey string
	req    *domain.SearchRequest
	resp   *domain.SearchResponse
	err    error
}

func (f *fakeProvider) Search(ctx context.Context, apiKey string, req *domain.SearchRequest) (*domain.SearchResponse, error) {
	f.calls++
	f.apiKey = apiKey
	f.req = req
	return f.resp, f.err
}

type fakeDataset struct {
	pushes [][]json.RawMessage
	err    error
}

func (f *fakeDataset) PushData(ctx context.Context, items []json.RawMessage) error {
	f.pushes = append(f.pushes, items)
	return f.err
}

type fakeKV struct {
	sets map[string][]any
	err  error
}

func newFakeKV() *fakeKV { return &fakeKV{sets: map[string][]any{}} }

func (f *fakeKV) SetValue(ctx context.Context, key string, value any) error {
	f.sets[key] = append(f.sets[key], value)
	return f.err
}

func (f *fakeKV) GetValue(ctx context.Context, key string) (json.RawMessage, error) {
	v, ok := f.sets[key]
	if !ok {
		return nil, sink.ErrNotFound
	}
	return json.Marshal(v[len(v)-1])
}

func ptr[T any](v T) *T { return &v }

func records(n int) []json.RawMessage {
	out := make([]json.RawMessage, n)
	for i := range out {
		out[i] = json.RawMessage(`{"id":"` + string(rune('a'+i)) + `"}`)
	}
	return out
}

var fixedNow = time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)

func newTestService(p *fakeProvider, fallback string) *peopleSearchServiceImpl {
	svc := NewPeopleSearchService(p, fallback).(*peopleSearchServiceImpl)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestRunPersistsResultsInOrder(t *testing.T) {
	searchTime := 1.5
	p := &fakeProvider{resp: &domain.SearchResponse{
		RequestID:          "req-1",
		ResolvedSearchType: "neural",
		SearchTime:         &searchTime,
		CostDollars:        json.RawMessage(`{"total":0.005}`),
		Results:            records(3),
	}}
	ds, kv := &fakeDataset{}, newFakeKV()

	in := &domain.Input{ExaAPIKey: "key", Query: ptr("  staff engineers in Berlin  "), IncludeText: ptr(true)}
	md, err := newTestService(p, "").Run(context.Background(), in, ds, kv)
	require.NoError(t, err)

	require.Len(t, ds.pushes, 1)
	assert.Equal(t, records(3), ds.pushes[0])

	require.Len(t, kv.sets[domain.MetadataKey], 1)
	assert.Same(t, md, kv.sets[domain.MetadataKey][0])
	assert.Equal(t, 3, md.ResultCount)
	assert.Equal(t, "req-1", md.RequestID)
	assert.Equal(t, "neural", md.ResolvedSearchType)
	assert.Equal(t, &searchTime, md.SearchTime)
	assert.JSONEq(t, `{"total":0.005}`, string(md.CostDollars))
	assert.Equal(t, "  staff engineers in Berlin  ", md.Query)
	assert.Equal(t, "US", md.UserLocation)
	assert.Equal(t, 10, md.NumResults)
	assert.True(t, md.IncludeText)
	assert.Equal(t, "2026-10-19T08:00:00.000Z", md.ExecutedAt)

	assert.Equal(t, 1, p.calls)
	assert.Equal(t, "staff engineers in Berlin", p.req.Query)
	assert.Equal(t, "key", p.apiKey)
}

func TestRunEmptyResultsSkipsDataset(t *testing.T) {
	p := &fakeProvider{resp: &domain.SearchResponse{Results: []json.RawMessage{}}}
	ds, kv := &fakeDataset{}, newFakeKV()

	md, err := newTestService(p, "key").Run(context.Background(), &domain.Input{Query: ptr("q")}, ds, kv)
	require.NoError(t, err)

	assert.Empty(t, ds.pushes)
	require.Len(t, kv.sets[domain.MetadataKey], 1)
	assert.Equal(t, 0, md.ResultCount)
}

func TestRunConfigurationErrorsMakeNoCalls(t *testing.T) {
	tests := []struct {
		name     string
		in       *domain.Input
		fallback string
		msg      string
	}{
		{name: "absent input", in: nil, fallback: "key", msg: domain.MsgInputRequired},
		{name: "missing query", in: &domain.Input{ExaAPIKey: "key"}, msg: domain.MsgQueryRequired},
		{name: "blank query", in: &domain.Input{ExaAPIKey: "key", Query: ptr(" \t\n")}, msg: domain.MsgQueryRequired},
		{name: "no api key", in: &domain.Input{Query: ptr("q")}, msg: domain.MsgAPIKeyRequired},
		{name: "blank api key", in: &domain.Input{Query: ptr("q"), ExaAPIKey: "  "}, fallback: " ", msg: domain.MsgAPIKeyRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakeProvider{resp: &domain.SearchResponse{Results: records(1)}}
			ds, kv := &fakeDataset{}, newFakeKV()

			_, err := newTestService(p, tt.fallback).Run(context.Background(), tt.in, ds, kv)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrConfiguration)
			assert.Equal(t, tt.msg, err.Error())

			assert.Zero(t, p.calls)
			assert.Empty(t, ds.pushes)
			assert.Empty(t, kv.sets)
		})
	}
}

func TestRunAPIKeyRequiredMentionsKey(t *testing.T) {
	_, err := newTestService(&fakeProvider{}, "").Run(context.Background(), &domain.Input{Query: ptr("q")}, &fakeDataset{}, newFakeKV())
	require.Error(t, err)
	assert.Contains(t, strings.ToLower(err.Error()), "api key")
}

func TestRunUsesFallbackKey(t *testing.T) {
	p := &fakeProvider{resp: &domain.SearchResponse{Results: records(0)}}
	_, err := newTestService(p, " env-key ").Run(context.Background(), &domain.Input{Query: ptr("q")}, &fakeDataset{}, newFakeKV())
	require.NoError(t, err)
	assert.Equal(t, "env-key", p.apiKey)
}

func TestRunMissingResultsIsUpstreamError(t *testing.T) {
	p := &fakeProvider{resp: &domain.SearchResponse{RequestID: "req"}}
	ds, kv := &fakeDataset{}, newFakeKV()

	_, err := newTestService(p, "key").Run(context.Background(), &domain.Input{Query: ptr("q")}, ds, kv)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.Equal(t, 1, p.calls)
	assert.Empty(t, ds.pushes)
	assert.Empty(t, kv.sets)
}

func TestRunProviderFailure(t *testing.T) {
	cause := errors.New("connection refused")

	t.Run("plain error is wrapped", func(t *testing.T) {
		p := &fakeProvider{err: cause}
		_, err := newTestService(p, "key").Run(context.Background(), &domain.Input{Query: ptr("q")}, &fakeDataset{}, newFakeKV())
		assert.ErrorIs(t, err, domain.ErrUpstream)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("domain error passes through", func(t *testing.T) {
		upstream := domain.NewUpstreamError(domain.MsgInvalidResponse, cause)
		p := &fakeProvider{err: upstream}
		_, err := newTestService(p, "key").Run(context.Background(), &domain.Input{Query: ptr("q")}, &fakeDataset{}, newFakeKV())
		assert.Same(t, upstream, err)
	})
}

func TestRunSinkFailuresArePersistenceErrors(t *testing.T) {
	cause := errors.New("disk full")

	t.Run("dataset", func(t *testing.T) {
		p := &fakeProvider{resp: &domain.SearchResponse{Results: records(2)}}
		kv := newFakeKV()
		_, err := newTestService(p, "key").Run(context.Background(), &domain.Input{Query: ptr("q")}, &fakeDataset{err: cause}, kv)
		assert.ErrorIs(t, err, domain.ErrPersistence)
		assert.ErrorIs(t, err, cause)
		assert.Empty(t, kv.sets)
	})

	t.Run("metadata", func(t *testing.T) {
		p := &fakeProvider{resp: &domain.SearchResponse{Results: records(2)}}
		kv := newFakeKV()
		kv.err = cause
		_, err := newTestService(p, "key").Run(context.Background(), &domain.Input{Query: ptr("q")}, &fakeDataset{}, kv)
		assert.ErrorIs(t, err, domain.ErrPersistence)
		assert.Equal(t, domain.KindPersistence, domain.KindOf(err))
	})
}

func TestTruncateQuery(t *testing.T) {
	assert.Equal(t, "short", truncateQuery("short"))
	long := strings.Repeat("x", 60)
	assert.Equal(t, strings.Repeat("x", 50)+"...", truncateQuery(long))
	assert.Equal(t, strings.Repeat("ü", 50), truncateQuery(strings.Repeat("ü", 50)))
}
