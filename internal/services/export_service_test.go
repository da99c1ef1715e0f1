package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"tripwise/pkg/utils"
)

func TestExportService_ItineraryPDF(t *testing.T) {
	f := newItineraryFixture(&fakeAI{})
	ctx := context.Background()

	rec, err := f.svc.Save(ctx, uuid.NewString(), saveRequest(nil))
	require.NoError(t, err)

	maps, _ := newTestMapService(t)
	export := NewExportService(f.svc, maps, "https://tripwise.example/", "", zap.NewNop())

	data, filename, err := export.ItineraryPDF(ctx, rec.ID)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
	assert.Equal(t, "Hangzhou_2024-05-01.pdf", filename)

	_, _, err = export.ItineraryPDF(ctx, uuid.NewString())
	assert.ErrorIs(t, err, utils.ErrItineraryNotFound)
}

func TestExportService_MapFailureDegrades(t *testing.T) {
	f := newItineraryFixture(&fakeAI{})
	ctx := context.Background()
	rec, err := f.svc.Save(ctx, uuid.NewString(), saveRequest(nil))
	require.NoError(t, err)

	unconfigured := NewMapService("", "", nil, zap.NewNop())
	data, _, err := NewExportService(f.svc, unconfigured, "", "", zap.NewNop()).ItineraryPDF(ctx, rec.ID)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}
