//go:build property

package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"dvi/internal/authz"
	bodymodels "dvi/internal/body/models"
	"dvi/internal/identification/models"
	"dvi/internal/identification/service"
	"dvi/internal/person"
	"dvi/internal/storage"
	"dvi/internal/storage/memory"
	id "dvi/pkg/domain"
	"dvi/pkg/requestcontext"
	"dvi/pkg/testutil"
)

const (
	cmdOpen = iota
	cmdAdvance
	cmdRevoke
	cmdDelete
)

type claimCommand struct {
	Kind     int
	Target   int
	Status   models.Status
	Method   models.Method
	Override bool
}

var (
	statuses = []models.Status{models.StatusUnidentified, models.StatusPreliminary, models.StatusConfirmed}
	methods  = []models.Method{models.MethodVisualRecognition, models.MethodFingerprints, models.MethodDNAProfile}
)

func genClaimCommand() gopter.Gen {
	return gopter.CombineGens(
		gen.IntRange(cmdOpen, cmdDelete),
		gen.IntRange(0, 3),
		gen.IntRange(0, len(statuses)-1),
		gen.IntRange(0, len(methods)-1),
		gen.Bool(),
	).Map(func(v []any) claimCommand {
		return claimCommand{
			Kind:     v[0].(int),
			Target:   v[1].(int),
			Status:   statuses[v[2].(int)],
			Method:   methods[v[3].(int)],
			Override: v[4].(bool),
		}
	})
}

// Under any command sequence a body has at most one confirmed claim, and a
// claim that was ever confirmed is never removed.
func TestClaimInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("single confirmed claim, confirmed claims persist", prop.ForAll(
		func(cmds []claimCommand) bool {
			ctx := requestcontext.WithTime(testutil.AsRole(context.Background(), "P-admin", authz.RoleAdmin), now)
			store := memory.New()
			svc := service.New(store, authz.NewRolePolicy(authz.DefaultGrants()), person.NewAdapter(person.NewStaticRegistry()))

			b, err := bodymodels.NewBody(id.NewBodyID(), bodymodels.NewBodyParams{
				Label: "B-1", DateOfRecovery: now.Add(-time.Hour), PlaceOfRecovery: "L1",
			}, now)
			if err != nil {
				return false
			}
			if err := store.RunInTx(ctx, func(ctx context.Context, tx storage.Tx) error {
				if err := tx.InsertBody(ctx, b); err != nil {
					return err
				}
				return tx.InsertChecklist(ctx, bodymodels.NewChecklist(b.ID, now))
			}); err != nil {
				return false
			}

			var opened []id.ClaimID
			everConfirmed := map[id.ClaimID]bool{}
			for _, c := range cmds {
				if c.Kind == cmdOpen || len(opened) == 0 {
					claim, err := svc.Open(ctx, service.OpenInput{
						Body:            b.ID,
						ClaimedIdentity: id.PersonRef(fmt.Sprintf("P-%d", c.Target)),
						Method:          c.Method,
					})
					if err == nil {
						opened = append(opened, claim.ID)
					}
					continue
				}
				target := opened[c.Target%len(opened)]
				switch c.Kind {
				case cmdAdvance:
					claim, err := svc.Advance(ctx, target, service.AdvanceInput{To: c.Status, Override: c.Override})
					if err == nil && claim.Status == models.StatusConfirmed {
						everConfirmed[target] = true
					}
				case cmdRevoke:
					_, _ = svc.Revoke(ctx, target, "re-examined")
				case cmdDelete:
					_ = svc.Delete(ctx, target)
				}

				claims, err := store.ListClaimsForBody(ctx, b.ID)
				if err != nil {
					return false
				}
				confirmed := 0
				present := map[id.ClaimID]bool{}
				for _, cl := range claims {
					present[cl.ID] = true
					if cl.IsConfirmed() && !cl.IsRevoked() {
						confirmed++
					}
				}
				if confirmed > 1 {
					return false
				}
				for claimID := range everConfirmed {
					if !present[claimID] {
						return false
					}
				}
			}
			return true
		},
		gen.SliceOf(genClaimCommand()),
	))

	properties.TestingRun(t)
}
