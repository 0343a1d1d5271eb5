package drafting

import (
	"fmt"

	"github.com/dgallion1/docdraft/internal/navigator"
)

// WorkBlocks renders a work-drafting navigation run as report blocks: the
// prose of every drafted chunk plus inline notices for files that could not
// be navigated.
func WorkBlocks(traces []navigator.Trace) []string {
	var blocks []string
	for _, tr := range traces {
		switch tr.Stop {
		case navigator.StopNoContent:
			blocks = append(blocks, fmt.Sprintf("--- Aucun contenu pour %s ---", tr.File))
			continue
		case navigator.StopInitialGuessFailed:
			blocks = append(blocks, fmt.Sprintf("Erreur lors du guess initial pour %s : %s", tr.File, tr.Error))
			continue
		}

		for _, st := range tr.Steps {
			if st.Prose != "" {
				blocks = append(blocks, fmt.Sprintf("Travaux (source : %s) : %s", tr.File, st.Prose))
			}
		}

		switch tr.Stop {
		case navigator.StopRevisit:
			blocks = append(blocks, fmt.Sprintf("Erreur : Morceau %d déjà traité pour %s. Passage à fin.", tr.StoppedAt, tr.File))
		case navigator.StopGenerationError:
			blocks = append(blocks, fmt.Sprintf("Erreur lors du traitement du morceau %d pour %s : %s", tr.StoppedAt, tr.File, tr.Error))
		}
	}
	return blocks
}
