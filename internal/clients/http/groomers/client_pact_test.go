//go:build pact
// +build pact

package groomers_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	pactconsumer "github.com/pact-foundation/pact-go/v2/consumer"
	"github.com/pact-foundation/pact-go/v2/matchers"
	"github.com/stretchr/testify/require"

	"github.com/tropicbliss/ESD-Project/internal/clients/http/groomers"
	"github.com/tropicbliss/ESD-Project/internal/clients/http/pacttest"
	"github.com/tropicbliss/ESD-Project/internal/platform/httpclient"
	"github.com/tropicbliss/ESD-Project/internal/shared/fault"
	"github.com/tropicbliss/ESD-Project/internal/shared/grooming"
)

func TestGroomerAcceptsContract(t *testing.T) {
	pact := pacttest.NewPact(t, pacttest.ConsumerName, pacttest.GroomerProvider)
	acceptsBody := matchers.Map{"petTypes": matchers.ArrayMinLike("Cats", 1)}

	pact.AddInteraction().
		Given(pacttest.StateGroomerAcceptsCats).
		UponReceiving("a request to check whether a groomer accepts cats").
		WithRequest("POST", "/accepts/"+pacttest.ExistingGroomer, func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.JSONBody(acceptsBody)
		}).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.JSONBody(matchers.Map{
				"accepted": matchers.Like(true),
				"prices": matchers.Map{
					"basic":   matchers.Map{"rate": matchers.Like(30.0)},
					"premium": matchers.Map{"rate": matchers.Like(45.0)},
				},
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateGroomerMissing).
		UponReceiving("a request to check an unknown groomer").
		WithRequest("POST", "/accepts/"+pacttest.MissingGroomer, func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.JSONBody(acceptsBody)
		}).
		WillRespondWith(http.StatusNotFound, func(b *pactconsumer.V2ResponseBuilder) {
			b.JSONBody(matchers.Map{"message": matchers.Like("groomer not found")})
		})

	err := pact.ExecuteTest(t, func(config pactconsumer.MockServerConfig) error {
		pool := httpclient.New()
		defer pool.Close()
		client, err := groomers.NewClient(pacttest.BaseURL(config), pool)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		quote, err := client.Accepts(ctx, pacttest.ExistingGroomer, []grooming.PetType{grooming.PetCats})
		if err != nil {
			return fmt.Errorf("accepts: %w", err)
		}
		if price, ok := quote.Lookup(grooming.TierBasic); !ok || !price.Usable() {
			return fmt.Errorf("expected a usable basic rate, got %+v", quote)
		}

		_, err = client.Accepts(ctx, pacttest.MissingGroomer, []grooming.PetType{grooming.PetCats})
		if !fault.IsKind(err, fault.KindNotFound) {
			return fmt.Errorf("expected NotFound, got %v", err)
		}
		return nil
	})
	require.NoError(t, err)
}
