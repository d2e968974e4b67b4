package drafts

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metagrip/internal/client"
	"metagrip/internal/domain"
)

type fakeSource struct {
	adapters    []client.Adapter
	adapterErr  error
	props       map[string]any
	propsErr    error
	gotTemplate string
}

func (f *fakeSource) ListAdapters(_ context.Context, _, template string) ([]client.Adapter, error) {
	f.gotTemplate = template
	return f.adapters, f.adapterErr
}

func (f *fakeSource) GetPreferences(context.Context) (map[string]any, error) {
	return f.props, f.propsErr
}

func draftEntry(kind, desc string) map[string]any {
	return map[string]any{
		"description": desc,
		"config": map[string]any{
			"metadata": map[string]any{"type": kind},
		},
	}
}

func TestLoadMergesAppsThenDrafts(t *testing.T) {
	src := &fakeSource{
		adapters: []client.Adapter{
			{Name: "nightly", Template: BatchTemplate, Status: "Running"},
			{Name: "hourly", Template: BatchTemplate},
		},
		props: map[string]any{
			DraftsKey: map[string]any{
				"zeta":  draftEntry("etl.realtime", "z"),
				"alpha": draftEntry("etl.batch", "a"),
			},
		},
	}

	apps, err := NewService(src, nil).Load(context.Background(), "default")
	require.NoError(t, err)
	assert.Equal(t, BatchTemplate, src.gotTemplate)

	assert.Equal(t, []domain.ETLApp{
		{Name: "nightly", Template: BatchTemplate, Status: "Running"},
		{Name: "hourly", Template: BatchTemplate, Status: StatusStopped},
		{Name: "alpha", Template: "etl.batch", Status: StatusDraft, Description: "a", IsDraft: true},
		{Name: "zeta", Template: "etl.realtime", Status: StatusDraft, Description: "z", IsDraft: true},
	}, apps)
}

func TestAdapterFailureStillLoadsDrafts(t *testing.T) {
	src := &fakeSource{
		adapterErr: errors.New("404"),
		props:      map[string]any{DraftsKey: map[string]any{"d": draftEntry("etl.batch", "")}},
	}

	apps, err := NewService(src, nil).Load(context.Background(), "default")
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.True(t, apps[0].IsDraft)
}

func TestEmptySources(t *testing.T) {
	apps, err := NewService(&fakeSource{props: map[string]any{}}, nil).Load(context.Background(), "default")
	require.NoError(t, err)
	assert.Empty(t, apps)
}

func TestMalformedDraftsAreSkipped(t *testing.T) {
	src := &fakeSource{props: map[string]any{DraftsKey: map[string]any{
		"good": draftEntry("etl.batch", ""),
		"bad":  "not an object",
	}}}

	apps, err := NewService(src, nil).Load(context.Background(), "default")
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, "good", apps[0].Name)

	src.props = map[string]any{DraftsKey: []any{1, 2}}
	apps, err = NewService(src, nil).Load(context.Background(), "default")
	require.NoError(t, err)
	assert.Empty(t, apps)
}

func TestBagFailureIsReturned(t *testing.T) {
	src := &fakeSource{
		adapters: []client.Adapter{{Name: "a"}},
		propsErr: errors.New("unauthorized"),
	}
	_, err := NewService(src, nil).Load(context.Background(), "default")
	assert.ErrorIs(t, err, src.propsErr)
}
