package seed

import (
	"context"
	"fmt"

	"github.com/atendimentos/backend/internal/atendimento"
	"github.com/atendimentos/backend/internal/repo"
)

// Samples são os registros de demonstração usados pelo servidor mock.
var Samples = []atendimento.Input{
	{
		Nome:         "Maria Clara Souza",
		Profissional: "Dra. Ana Lima",
		Data:         "2024-03-04",
		Tipo:         atendimento.TipoPsicologico,
		Observacoes:  "Acolhimento inicial. Queixa de ansiedade relacionada à escola.",
	},
	{
		Nome:         "João Pedro Alves",
		Profissional: "Carlos Mendes",
		Data:         "2024-03-06",
		Tipo:         atendimento.TipoPedagogico,
		Observacoes:  "Avaliação de leitura e escrita; encaminhar plano de reforço.",
	},
	{
		Nome:         "Lúcia Ferreira",
		Profissional: "Patrícia Rocha",
		Data:         "2024-03-11",
		Tipo:         atendimento.TipoAssistenciaSocial,
		Observacoes:  "Orientação sobre benefício eventual. Encaminhada ao CRAS.",
	},
	{
		Nome:         "Maria Clara Souza",
		Profissional: "Dra. Ana Lima",
		Data:         "2024-03-18",
		Tipo:         atendimento.TipoPsicologico,
	},
}

// Run insere os Samples quando o store está vazio; caso contrário não faz nada.
// Devolve quantos registros foram criados.
func Run(ctx context.Context, store repo.Store) (int, error) {
	n, err := store.Count(ctx, repo.Filter{})
	if err != nil {
		return 0, fmt.Errorf("seed count: %w", err)
	}
	if n > 0 {
		return 0, nil
	}
	for i, in := range Samples {
		if _, err := store.Create(ctx, in); err != nil {
			return i, fmt.Errorf("seed %q: %w", in.Nome, err)
		}
	}
	return len(Samples), nil
}
