package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/avvvet/card-services/internal/cardsvc/models"
	"github.com/avvvet/card-services/internal/cardsvc/service"
	"github.com/avvvet/card-services/internal/cardsvc/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) *service.CardService {
	t.Helper()
	fs, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)
	return service.NewCardService(fs)
}

func TestRun_NewThenDisableThenEnable(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, run(ctx, s, &out, true, false, "", ""))
	assert.Contains(t, out.String(), "generated card:")

	cards, err := s.ListCards(ctx)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	sn := cards[0].CardSN

	out.Reset()
	require.NoError(t, run(ctx, s, &out, false, false, sn, ""))
	assert.Contains(t, out.String(), "disabled card: "+sn)
	assert.Contains(t, out.String(), models.CardStatusDisabled)

	out.Reset()
	require.NoError(t, run(ctx, s, &out, false, false, "", sn))
	assert.Contains(t, out.String(), "enabled card: "+sn)
	assert.Contains(t, out.String(), "0/5")
}

func TestRun_UnknownCard(t *testing.T) {
	s := newService(t)

	err := run(context.Background(), s, &bytes.Buffer{}, false, false, "NOPE", "")
	assert.ErrorIs(t, err, service.ErrCardNotFound)
}

func TestRun_ListPrintsHeader(t *testing.T) {
	s := newService(t)

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), s, &out, false, true, "", ""))
	assert.True(t, strings.HasPrefix(out.String(), "CARD"))
}
