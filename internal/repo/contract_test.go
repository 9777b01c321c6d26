package repo

import (
	"context"
	"testing"

	"github.com/atendimentos/backend/internal/atendimento"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testStoreContract exercises the Store behaviour every backend must share.
// The store must be empty when called.
func testStoreContract(t *testing.T, s Store) {
	ctx := context.Background()

	in := atendimento.Input{
		Nome:         "Maria Souza",
		Profissional: "Dra. Ana Lima",
		Data:         "2024-05-02",
		Tipo:         atendimento.TipoPsicologico,
		Observacoes:  "Acolhimento inicial",
	}
	created, err := s.Create(ctx, in)
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	assert.Equal(t, in.Nome, created.Nome)
	assert.Equal(t, in.Data, created.Data)
	assert.Equal(t, in.Tipo, created.Tipo)
	assert.Equal(t, in.Observacoes, created.Observacoes)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Dra. Ana Lima", got.Profissional)

	second, err := s.Create(ctx, atendimento.Input{
		Nome: "João Pedro", Profissional: "Carlos", Data: "2024-05-10", Tipo: atendimento.TipoPedagogico,
	})
	require.NoError(t, err)
	assert.Equal(t, "", second.Observacoes)
	_, err = s.Create(ctx, atendimento.Input{
		Nome: "Lúcia 100%", Profissional: "Carla", Data: "2024-04-01", Tipo: atendimento.TipoAssistenciaSocial,
		Observacoes: "Encaminhada ao CRAS",
	})
	require.NoError(t, err)

	list, err := s.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "João Pedro", list[0].Nome, "most recent data first")
	assert.Equal(t, "Lúcia 100%", list[2].Nome)

	list, err = s.List(ctx, Filter{Query: "cras"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, atendimento.TipoAssistenciaSocial, list[0].Tipo)

	list, err = s.List(ctx, Filter{Query: "ANA"})
	require.NoError(t, err)
	require.Len(t, list, 1, "case-insensitive over profissional")

	list, err = s.List(ctx, Filter{Query: "100%"})
	require.NoError(t, err)
	require.Len(t, list, 1, "LIKE wildcards are literal")

	list, err = s.List(ctx, Filter{Tipo: atendimento.TipoPedagogico})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, second.ID, list[0].ID)

	n, err := s.Count(ctx, Filter{})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	page, err := s.List(ctx, Filter{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, created.ID, page[0].ID)

	upd := in
	upd.Nome = "Maria Souza Lima"
	upd.Observacoes = ""
	updated, err := s.Update(ctx, created.ID, upd)
	require.NoError(t, err)
	assert.Equal(t, "Maria Souza Lima", updated.Nome)
	assert.Equal(t, "", updated.Observacoes)
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))

	_, err = s.Update(ctx, 999999, upd)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Delete(ctx, created.ID))
	_, err = s.Get(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, created.ID), ErrNotFound)

	require.NoError(t, s.Ping(ctx))
}
