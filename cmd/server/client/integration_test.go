//go:build integration

package client

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/KirkDiggler/rpg-tracker/internal/entities"
	"github.com/KirkDiggler/rpg-tracker/internal/handlers/api/v1alpha1"
)

func TestEncounterCombatIntegration(t *testing.T) {
	// Skip if not running integration tests
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	// Connect to a running server
	grpcServerAddress := os.Getenv("GRPC_SERVER_ADDRESS")
	if grpcServerAddress == "" {
		grpcServerAddress = "localhost:50051"
	}
	conn, err := grpc.NewClient(grpcServerAddress, grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer func() {
		if err := conn.Close(); err != nil {
			t.Logf("Failed to close connection: %v", err)
		}
	}()

	client := v1alpha1.NewEncounterServiceClient(conn)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	ctx = v1alpha1.WithUserID(ctx, "integration-user")

	created, err := client.CreateEncounter(ctx, &v1alpha1.CreateEncounterRequest{Name: "Goblin Ambush"})
	require.NoError(t, err)
	encounterID := created.Encounter.ID
	defer func() {
		_, err := client.DeleteEncounter(ctx, &v1alpha1.DeleteEncounterRequest{EncounterID: encounterID})
		if err != nil {
			t.Logf("Failed to delete encounter: %v", err)
		}
	}()

	for i, name := range []string{"Fighter", "Goblin A", "Goblin B"} {
		initiative := 20 - i*5
		_, err := client.AddParticipant(ctx, &v1alpha1.AddParticipantRequest{
			EncounterID: encounterID,
			Participant: v1alpha1.Participant{
				Type:       string(entities.ParticipantTypeCreature),
				Name:       name,
				Initiative: &initiative,
				MaxHP:      12,
				AC:         13,
			},
		})
		require.NoError(t, err)
	}

	started, err := client.StartCombat(ctx, &v1alpha1.StartCombatRequest{EncounterID: encounterID})
	require.NoError(t, err)
	assert.Equal(t, entities.EncounterStatusActive, started.Encounter.Status)
	assert.True(t, started.Encounter.IsActive)

	order, err := client.GetInitiativeOrder(ctx, &v1alpha1.GetInitiativeOrderRequest{EncounterID: encounterID})
	require.NoError(t, err)
	require.Len(t, order.Order, 3)
	assert.Equal(t, "Fighter", order.Order[0].Name)

	next, err := client.NextTurn(ctx, &v1alpha1.NextTurnRequest{EncounterID: encounterID})
	require.NoError(t, err)
	assert.Equal(t, order.Order[1].ID, next.CurrentParticipantID)

	ended, err := client.EndCombat(ctx, &v1alpha1.EndCombatRequest{EncounterID: encounterID})
	require.NoError(t, err)
	assert.Equal(t, entities.EncounterStatusCompleted, ended.Encounter.Status)
	assert.Equal(t, 1, ended.Encounter.Turn)
}
