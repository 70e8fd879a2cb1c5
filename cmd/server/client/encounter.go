package client

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/rpg-tracker/internal/entities"
	"github.com/KirkDiggler/rpg-tracker/internal/handlers/api/v1alpha1"
)

var encounterCmd = &cobra.Command{
	Use:   "encounter",
	Short: "Encounter client commands",
}

var (
	descriptionFlag string

	participantType       string
	participantCharID     string
	participantCreatureID string
	participantInitiative int
	participantModifier   int
	participantMaxHP      int
	participantAC         int

	hpDamage  int
	hpHealing int
	hpSet     int
	hpTemp    int
)

func init() {
	createEncounterCmd.Flags().StringVar(&descriptionFlag, "description", "", "Encounter description")

	addParticipantCmd.Flags().StringVar(&participantType, "type", string(entities.ParticipantTypeCreature), "CHARACTER or CREATURE")
	addParticipantCmd.Flags().StringVar(&participantCharID, "character-id", "", "Character ID (CHARACTER only)")
	addParticipantCmd.Flags().StringVar(&participantCreatureID, "creature-id", "", "Creature reference (CREATURE only)")
	addParticipantCmd.Flags().IntVar(&participantInitiative, "initiative", 0, "Initiative total; omit to roll a d20")
	addParticipantCmd.Flags().IntVar(&participantModifier, "modifier", 0, "Initiative modifier added to a rolled d20")
	addParticipantCmd.Flags().IntVar(&participantMaxHP, "max-hp", 10, "Maximum hit points")
	addParticipantCmd.Flags().IntVar(&participantAC, "ac", 10, "Armor class")

	hpCmd.Flags().IntVar(&hpDamage, "damage", 0, "Damage to apply")
	hpCmd.Flags().IntVar(&hpHealing, "heal", 0, "Healing to apply after damage")
	hpCmd.Flags().IntVar(&hpSet, "set", 0, "Absolute hit points, applied last")
	hpCmd.Flags().IntVar(&hpTemp, "temp", 0, "Temporary hit points")

	encounterCmd.AddCommand(createEncounterCmd)
	encounterCmd.AddCommand(listEncountersCmd)
	encounterCmd.AddCommand(getEncounterCmd)
	encounterCmd.AddCommand(addParticipantCmd)
	encounterCmd.AddCommand(hpCmd)
	encounterCmd.AddCommand(startCombatCmd)
	encounterCmd.AddCommand(endCombatCmd)
	encounterCmd.AddCommand(nextTurnCmd)
	encounterCmd.AddCommand(orderCmd)
}

var createEncounterCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create an encounter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, cleanup, err := createEncounterClient()
		if err != nil {
			return err
		}
		defer cleanup()

		ctx, cancel := callContext()
		defer cancel()

		req := &v1alpha1.CreateEncounterRequest{Name: args[0]}
		if cmd.Flags().Changed("description") {
			req.Description = &descriptionFlag
		}

		resp, err := client.CreateEncounter(ctx, req)
		if err != nil {
			return fmt.Errorf("failed to create encounter: %w", err)
		}

		if err := printJSON(resp.Encounter); err != nil {
			return err
		}
		fmt.Printf("\n# To add a participant, run:\n")
		fmt.Printf("rpg-tracker client encounter add-participant %s \"Goblin\" --max-hp 7 --ac 15\n", resp.Encounter.ID)
		return nil
	},
}

var listEncountersCmd = &cobra.Command{
	Use:   "list",
	Short: "List your encounters, most recently updated first",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, cleanup, err := createEncounterClient()
		if err != nil {
			return err
		}
		defer cleanup()

		ctx, cancel := callContext()
		defer cancel()

		resp, err := client.ListEncounters(ctx, &v1alpha1.ListEncountersRequest{})
		if err != nil {
			return fmt.Errorf("failed to list encounters: %w", err)
		}

		if len(resp.Encounters) == 0 {
			fmt.Println("No encounters")
			return nil
		}
		for _, e := range resp.Encounters {
			fmt.Printf("%s  %-10s  round %-3d  %d participants  %s\n",
				e.ID, e.Status, e.Round, len(e.Participants), e.Name)
		}
		return nil
	},
}

var getEncounterCmd = &cobra.Command{
	Use:   "get [encounter-id]",
	Short: "Show an encounter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, cleanup, err := createEncounterClient()
		if err != nil {
			return err
		}
		defer cleanup()

		ctx, cancel := callContext()
		defer cancel()

		resp, err := client.GetEncounter(ctx, &v1alpha1.GetEncounterRequest{EncounterID: args[0]})
		if err != nil {
			return fmt.Errorf("failed to get encounter: %w", err)
		}

		return printJSON(resp.Encounter)
	},
}

var addParticipantCmd = &cobra.Command{
	Use:   "add-participant [encounter-id] [name]",
	Short: "Add a participant; initiative is rolled unless --initiative is given",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, cleanup, err := createEncounterClient()
		if err != nil {
			return err
		}
		defer cleanup()

		ctx, cancel := callContext()
		defer cancel()

		p := v1alpha1.Participant{
			Type:               participantType,
			Name:               args[1],
			InitiativeModifier: participantModifier,
			MaxHP:              participantMaxHP,
			AC:                 participantAC,
		}
		if cmd.Flags().Changed("initiative") {
			p.Initiative = &participantInitiative
		}
		if participantCharID != "" {
			p.CharacterID = &participantCharID
		}
		if participantCreatureID != "" {
			p.CreatureID = &participantCreatureID
		}

		resp, err := client.AddParticipant(ctx, &v1alpha1.AddParticipantRequest{
			EncounterID: args[0],
			Participant: p,
		})
		if err != nil {
			return fmt.Errorf("failed to add participant: %w", err)
		}

		for _, added := range resp.Encounter.Participants {
			if added.ID != resp.ParticipantID {
				continue
			}
			fmt.Printf("Added %s (%s) with initiative %d", added.Name, added.ID, added.Initiative)
			if added.InitiativeRoll != nil {
				fmt.Printf(" (rolled %d)", *added.InitiativeRoll)
			}
			fmt.Println()
		}
		return nil
	},
}

var hpCmd = &cobra.Command{
	Use:   "hp [encounter-id] [participant-id]",
	Short: "Apply damage, healing or an absolute hit point value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, cleanup, err := createEncounterClient()
		if err != nil {
			return err
		}
		defer cleanup()

		ctx, cancel := callContext()
		defer cancel()

		req := &v1alpha1.UpdateParticipantHPRequest{
			EncounterID:   args[0],
			ParticipantID: args[1],
		}
		if cmd.Flags().Changed("damage") {
			req.Damage = &hpDamage
		}
		if cmd.Flags().Changed("heal") {
			req.Healing = &hpHealing
		}
		if cmd.Flags().Changed("set") {
			req.CurrentHP = &hpSet
		}
		if cmd.Flags().Changed("temp") {
			req.TempHP = &hpTemp
		}

		resp, err := client.UpdateParticipantHP(ctx, req)
		if err != nil {
			return fmt.Errorf("failed to update hit points: %w", err)
		}

		for _, p := range resp.Encounter.Participants {
			if p.ID == args[1] {
				fmt.Printf("%s: %d/%d HP", p.Name, p.CurrentHP, p.MaxHP)
				if p.TempHP > 0 {
					fmt.Printf(" (+%d temp)", p.TempHP)
				}
				fmt.Println()
			}
		}
		return nil
	},
}

var startCombatCmd = &cobra.Command{
	Use:   "start [encounter-id]",
	Short: "Start combat",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, cleanup, err := createEncounterClient()
		if err != nil {
			return err
		}
		defer cleanup()

		ctx, cancel := callContext()
		defer cancel()

		resp, err := client.StartCombat(ctx, &v1alpha1.StartCombatRequest{EncounterID: args[0]})
		if err != nil {
			return fmt.Errorf("failed to start combat: %w", err)
		}

		fmt.Printf("Combat started! Round %d\n", resp.Encounter.Round)
		fmt.Printf("\n# To advance the turn, run:\n")
		fmt.Printf("rpg-tracker client encounter next-turn %s\n", resp.Encounter.ID)
		return nil
	},
}

var endCombatCmd = &cobra.Command{
	Use:   "end [encounter-id]",
	Short: "End combat",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, cleanup, err := createEncounterClient()
		if err != nil {
			return err
		}
		defer cleanup()

		ctx, cancel := callContext()
		defer cancel()

		resp, err := client.EndCombat(ctx, &v1alpha1.EndCombatRequest{EncounterID: args[0]})
		if err != nil {
			return fmt.Errorf("failed to end combat: %w", err)
		}

		fmt.Printf("Combat ended after %d round(s)\n", resp.Encounter.Round)
		return nil
	},
}

var nextTurnCmd = &cobra.Command{
	Use:   "next-turn [encounter-id]",
	Short: "Advance to the next participant",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, cleanup, err := createEncounterClient()
		if err != nil {
			return err
		}
		defer cleanup()

		ctx, cancel := callContext()
		defer cancel()

		resp, err := client.NextTurn(ctx, &v1alpha1.NextTurnRequest{EncounterID: args[0]})
		if err != nil {
			return fmt.Errorf("failed to advance turn: %w", err)
		}

		fmt.Printf("Turn ended successfully!\n")
		fmt.Printf("Round: %d\n", resp.Encounter.Round)
		fmt.Printf("Current Turn: %s\n", resp.CurrentParticipantID)
		return nil
	},
}

var orderCmd = &cobra.Command{
	Use:   "order [encounter-id]",
	Short: "Show the initiative order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, cleanup, err := createEncounterClient()
		if err != nil {
			return err
		}
		defer cleanup()

		ctx, cancel := callContext()
		defer cancel()

		resp, err := client.GetInitiativeOrder(ctx, &v1alpha1.GetInitiativeOrderRequest{EncounterID: args[0]})
		if err != nil {
			return fmt.Errorf("failed to get initiative order: %w", err)
		}

		fmt.Printf("Round %d\n\nTurn Order:\n", resp.Round)
		for i, p := range resp.Order {
			active := ""
			if p.ID == resp.CurrentParticipantID {
				active = " <- ACTIVE"
			}
			roll := "-"
			if p.InitiativeRoll != nil {
				roll = strconv.Itoa(*p.InitiativeRoll)
			}
			fmt.Printf("  %d. %s (Initiative: %d, roll %s, HP %d/%d)%s\n",
				i+1, p.Name, p.Initiative, roll, p.CurrentHP, p.MaxHP, active)
		}
		return nil
	},
}
