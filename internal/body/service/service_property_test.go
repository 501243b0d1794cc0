//go:build property

package service_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"dvi/internal/authz"
	"dvi/internal/body/service"
	"dvi/internal/location"
	morguemodels "dvi/internal/morgue/models"
	"dvi/internal/storage"
	"dvi/internal/storage/memory"
	id "dvi/pkg/domain"
	"dvi/pkg/requestcontext"
	"dvi/pkg/testutil"
)

type bodyCommand struct {
	Create bool
	Label  int
	Target int
}

func genBodyCommand() gopter.Gen {
	return gopter.CombineGens(gen.Bool(), gen.IntRange(0, 5), gen.IntRange(0, 2)).Map(func(v []any) bodyCommand {
		return bodyCommand{Create: v[0].(bool), Label: v[1].(int), Target: v[2].(int)}
	})
}

// After any mix of creates and morgue moves: labels are unique, every body
// has a checklist, and the tracker's current location is the last one given.
func TestBodyInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("labels unique, checklist present, tracker current", prop.ForAll(
		func(cmds []bodyCommand) bool {
			ctx := requestcontext.WithTime(testutil.AsRole(context.Background(), "P-admin", authz.RoleAdmin), now)
			store := memory.New()
			tracker := location.NewTracker(location.NewMemoryJournal())
			svc := newService(store, tracker)

			morgues := make([]*morguemodels.Morgue, 3)
			for i := range morgues {
				m, err := morguemodels.NewMorgue(id.NewMorgueID(), fmt.Sprintf("M%d", i), "", id.LocationRef(fmt.Sprintf("L-m%d", i)), now)
				if err != nil {
					return false
				}
				morgues[i] = m
				if err := store.RunInTx(ctx, func(ctx context.Context, tx storage.Tx) error { return tx.InsertMorgue(ctx, m) }); err != nil {
					return false
				}
			}

			var bodies []id.BodyID
			expected := map[id.BodyID]id.LocationRef{}
			labels := map[string]bool{}
			for _, c := range cmds {
				if c.Create || len(bodies) == 0 {
					label := fmt.Sprintf("B-%d", c.Label)
					place := id.LocationRef(fmt.Sprintf("L%d", c.Target))
					d, err := svc.Create(ctx, service.CreateInput{Label: label, DateOfRecovery: recovered, PlaceOfRecovery: place})
					if labels[label] != (err != nil) {
						return false
					}
					if err == nil {
						labels[label] = true
						bodies = append(bodies, d.ID)
						expected[d.ID] = place
					}
					continue
				}
				b := bodies[c.Label%len(bodies)]
				m := morgues[c.Target]
				if _, err := svc.ReassignMorgue(ctx, b, m.ID, now); err != nil {
					return false
				}
				expected[b] = m.Location
			}

			for _, b := range bodies {
				if _, err := store.GetChecklist(ctx, b); err != nil {
					return false
				}
				p, ok, err := tracker.CurrentLocation(ctx, b)
				if err != nil || !ok || p.Location != expected[b] {
					return false
				}
			}
			return len(bodies) == len(labels)
		},
		gen.SliceOf(genBodyCommand()),
	))

	properties.TestingRun(t)
}
