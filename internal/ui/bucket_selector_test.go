package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietdv277/s3du/pkg/types"
)

func selectorBuckets() types.Buckets {
	return types.Buckets{
		{Name: "app-logs", Region: "us-east-1", StorageTypes: []types.StorageClass{types.Standard}},
		{Name: "backups", Region: "us-east-1", StorageTypes: []types.StorageClass{types.Glacier, types.DeepArchive}},
		{Name: "static-assets", Region: "us-east-1"},
	}
}

func press(t *testing.T, m BucketModel, msgs ...tea.Msg) BucketModel {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		var ok bool
		m, ok = next.(BucketModel)
		require.True(t, ok)
	}
	return m
}

func TestBucketModelSelect(t *testing.T) {
	m := press(t, NewBucketModel(selectorBuckets()),
		tea.KeyMsg{Type: tea.KeyDown},
		tea.KeyMsg{Type: tea.KeyDown},
		tea.KeyMsg{Type: tea.KeyDown},
		tea.KeyMsg{Type: tea.KeyUp},
		tea.KeyMsg{Type: tea.KeyEnter},
	)

	require.NotNil(t, m.Selected())
	assert.Equal(t, "backups", m.Selected().Name)
	assert.False(t, m.Cancelled())
	assert.Empty(t, m.View())
}

func TestBucketModelSearch(t *testing.T) {
	m := press(t, NewBucketModel(selectorBuckets()),
		tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("glac")},
	)
	require.Len(t, m.filtered, 1)
	assert.Equal(t, "backups", m.filtered[0].Name)
	assert.Contains(t, m.View(), "1/3 buckets")

	m = press(t, m,
		tea.KeyMsg{Type: tea.KeyBackspace},
		tea.KeyMsg{Type: tea.KeyBackspace},
		tea.KeyMsg{Type: tea.KeyBackspace},
		tea.KeyMsg{Type: tea.KeyBackspace},
	)
	assert.Len(t, m.filtered, 3)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("nothing-matches")})
	assert.Empty(t, m.filtered)
	assert.Contains(t, m.View(), "No buckets found")

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, m.Selected())
}

func TestBucketModelCancel(t *testing.T) {
	m := press(t, NewBucketModel(selectorBuckets()), tea.KeyMsg{Type: tea.KeyEsc})

	assert.True(t, m.Cancelled())
	assert.Nil(t, m.Selected())
}

func TestBucketModelView(t *testing.T) {
	m := press(t, NewBucketModel(selectorBuckets()), tea.WindowSizeMsg{Width: 100, Height: 40})

	view := m.View()
	assert.Contains(t, view, "app-logs")
	assert.Contains(t, view, "static-assets")
	assert.Contains(t, view, "Bucket Details")
	assert.Contains(t, view, "3/3 buckets")
	assert.Equal(t, 98, m.contentWidth)
}

func TestSelectBucketEmpty(t *testing.T) {
	_, err := SelectBucket(nil)
	assert.Error(t, err)
}
