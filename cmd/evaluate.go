package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/audit"
	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/config"
	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/model"
	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/pdp/engine"
	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/pdp/matrix"
	pdp_model "github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/pdp/model"
)

// evaluateCmd runs a single decision against the configured matrix and
// risk model, without sessions or persistence.
var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate one access request locally",
	Example: `  qpde evaluate --actor u-1 --role finance_manager --resource bancos --action view \
    --mfa --device-trusted --network office --at 2024-03-05T10:00:00Z`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.GetConfig()
		flags := cmd.Flags()

		actorID, _ := flags.GetString("actor")
		role, _ := flags.GetString("role")
		resource, _ := flags.GetString("resource")
		action, _ := flags.GetString("action")
		approvers, _ := flags.GetStringSlice("approved-by")
		at, _ := flags.GetString("at")
		file, _ := flags.GetString("matrix")
		if file == "" {
			file = cfg.Engine.MatrixFile
		}

		now := time.Now()
		if at != "" {
			t, err := time.Parse(time.RFC3339, at)
			if err != nil {
				return fmt.Errorf("invalid --at: %w", err)
			}
			now = t
		}

		loc, err := loadLocation(cfg.Engine.Timezone)
		if err != nil {
			return err
		}
		reg, err := loadRegistry(file)
		if err != nil {
			return err
		}
		aggregator, err := newAggregator(cfg.Risk, loc)
		if err != nil {
			return err
		}

		recorder := audit.NewRecorder(audit.WithCapacity(1))
		decisionEngine := engine.NewEngine(matrix.NewStaticManager(reg), aggregator, engineConfig(cfg.Engine, loc),
			engine.WithClock(func() time.Time { return now }),
			engine.WithRecorder(recorder))

		actor := &model.Actor{ID: actorID, Role: role, Trust: trustFromFlags(cmd)}
		decision, evalErr := decisionEngine.Evaluate(cmd.Context(), actor,
			model.Action{Type: model.ActionType(action), ResourceID: resource, ApprovedBy: approvers}, resource)
		if decision == nil {
			return evalErr
		}

		out := struct {
			Decision *pdp_model.PermissionDecision `json:"decision"`
			Audit    []audit.AuditEntry            `json:"audit,omitempty"`
		}{Decision: decision}
		if verbose, _ := flags.GetBool("audit"); verbose {
			out.Audit = recorder.Recent(1)
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return err
		}
		if evalErr != nil {
			return evalErr
		}
		if exit, _ := flags.GetBool("exit-code"); exit && !decision.Allowed {
			return decision.Err()
		}
		return nil
	},
}

func trustFromFlags(cmd *cobra.Command) model.TrustSignals {
	flags := cmd.Flags()
	mfa, _ := flags.GetBool("mfa")
	biometric, _ := flags.GetBool("biometric")
	deviceTrusted, _ := flags.GetBool("device-trusted")
	network, _ := flags.GetString("network")
	country, _ := flags.GetString("country")
	secure, _ := flags.GetBool("secure")

	trust := model.TrustSignals{
		MFAVerified:       mfa,
		BiometricVerified: biometric,
		DeviceTrusted:     deviceTrusted,
		NetworkOrigin:     network,
	}
	if network != "" || country != "" {
		trust.Location = &model.Location{Network: network, Country: country, Secure: secure}
	}
	return trust
}

func init() {
	flags := evaluateCmd.Flags()
	flags.String("actor", "", "Actor id")
	flags.String("role", "", "Actor role")
	flags.String("resource", "", "Panel id")
	flags.String("action", string(model.ActionView), "Action type")
	flags.StringSlice("approved-by", nil, "Ids of approving actors")
	flags.Bool("mfa", false, "Actor passed MFA")
	flags.Bool("biometric", false, "Actor passed biometric verification")
	flags.Bool("device-trusted", false, "Request comes from a trusted device")
	flags.String("network", "", "Network origin (office, vpn, home, public); empty means unknown location")
	flags.String("country", "", "ISO country code of the request")
	flags.Bool("secure", false, "Location is a secure area")
	flags.String("at", "", "Evaluate at this RFC3339 time instead of now")
	flags.String("matrix", "", "Matrix file (default is the configured or built-in matrix)")
	flags.Bool("audit", false, "Include the audit entry in the output")
	flags.Bool("exit-code", false, "Exit non-zero when access is denied")
	_ = evaluateCmd.MarkFlagRequired("actor")
	_ = evaluateCmd.MarkFlagRequired("role")
	_ = evaluateCmd.MarkFlagRequired("resource")

	rootCmd.AddCommand(evaluateCmd)
}
