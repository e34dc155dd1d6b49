package main

import (
	"fmt"
	"os"

	"garage-orchestrator/internal/domain/slot"
	"garage-orchestrator/internal/infra/redisstore"
	"garage-orchestrator/internal/infra/uow"
	"garage-orchestrator/internal/pkg/errs"
	"garage-orchestrator/internal/usecase"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type layoutFile struct {
	Slots []struct {
		ID    string `yaml:"id"`
		Type  string `yaml:"type"`
		Floor string `yaml:"floor"`
	} `yaml:"slots"`
}

func slotsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slots",
		Short: "Manage the physical slot layout",
	}
	cmd.AddCommand(provisionCmd())
	return cmd
}

func provisionCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "provision",
		Short: "Register slots from a layout file",
		Long: `Registers every slot of the layout in the ledger and creates its live
document. Slots that already exist keep their live state.

Example layout:
  slots:
    - id: A-01
      type: REGULAR
      floor: "1"
    - id: E-01
      type: EMERGENCY
      floor: "1"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			layout, err := readLayout(file)
			if err != nil {
				return err
			}

			e, err := loadEnv()
			if err != nil {
				return err
			}
			pool, closePool, err := e.postgres()
			if err != nil {
				return err
			}
			defer closePool()
			rdb, err := e.redis()
			if err != nil {
				return err
			}
			defer rdb.Close()

			provision := usecase.NewProvisionUseCase(
				uow.NewPostgresUoW(pool, e.logger),
				redisstore.NewSlotStore(rdb, e.cfg.Redis, e.logger),
				e.logger,
			)
			res, err := provision.Provision(cmd.Context(), layout)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "provisioned %d slots (%d created, %d kept)\n",
				len(layout), res.Created, res.Kept)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "layout.yaml", "layout file")
	return cmd
}

func readLayout(path string) ([]usecase.SlotLayout, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(err, "read layout")
	}
	return parseLayout(raw)
}

func parseLayout(raw []byte) ([]usecase.SlotLayout, error) {
	var f layoutFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, errs.Wrap(err, "parse layout")
	}
	if len(f.Slots) == 0 {
		return nil, errs.New("layout has no slots")
	}

	seen := make(map[string]bool, len(f.Slots))
	out := make([]usecase.SlotLayout, 0, len(f.Slots))
	for _, s := range f.Slots {
		if s.ID == "" {
			return nil, errs.New("slot without id")
		}
		if seen[s.ID] {
			return nil, errs.Newf("duplicate slot %q", s.ID)
		}
		seen[s.ID] = true

		typ := slot.TypeRegular
		if s.Type != "" {
			t, err := slot.ParseType(s.Type)
			if err != nil {
				return nil, errs.Wrap(err, s.ID)
			}
			typ = t
		}
		out = append(out, usecase.SlotLayout{ID: s.ID, Type: typ, Floor: s.Floor})
	}
	return out, nil
}
