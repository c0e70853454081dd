package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/isis-group/isis-sub000/pkg/data"
	"github.com/isis-group/isis-sub000/pkg/errors"
	"github.com/isis-group/isis-sub000/pkg/json"
	"github.com/isis-group/isis-sub000/pkg/numeric"
	"github.com/isis-group/isis-sub000/pkg/types"
)

type typeInfo struct {
	ID         int      `json:"id"`
	Name       string   `json:"name"`
	ArrayName  string   `json:"array_name"`
	Category   string   `json:"category"`
	Size       int      `json:"size"`
	Components int      `json:"components"`
	Ordered    bool     `json:"ordered"`
	Operators  []string `json:"operators,omitempty"`
}

func describe(id types.ID) typeInfo {
	t := id.Traits()
	info := typeInfo{
		ID:         int(id),
		Name:       t.Name,
		ArrayName:  id.ArrayName(),
		Category:   t.Category.String(),
		Size:       t.Size,
		Components: t.Components,
		Ordered:    t.Ordered,
	}
	for _, op := range []struct {
		ok  bool
		sym string
	}{{t.Plus, "+"}, {t.Minus, "-"}, {t.Multiply, "*"}, {t.Divide, "/"}} {
		if op.ok {
			info.Operators = append(info.Operators, op.sym)
		}
	}
	return info
}

func (a *app) typesCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "types",
		Short: "List the registered value kinds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			infos := make([]typeInfo, 0, types.NumTypes)
			for _, id := range types.All() {
				infos = append(infos, describe(id))
			}
			if asJSON {
				return json.MarshalToWriter(cmd.OutOrStdout(), infos)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tSIZE\tOPERATORS")
			for _, info := range infos {
				fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n", info.ID, info.Name, info.Category, info.Size, joinOps(info.Operators))
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

func joinOps(ops []string) string {
	if len(ops) == 0 {
		return "-"
	}
	return strings.Join(ops, "")
}

func resolveType(name string) (types.ID, error) {
	id, ok := types.ByName(name)
	if !ok {
		return types.InvalidID, errors.Newf(errors.ErrorTypeValidation, "unknown type %q, see 'isisconv types'", name)
	}
	return id, nil
}

func (a *app) convertCommand() *cobra.Command {
	var (
		to      string
		format  string
		labeled bool
		asJSON  bool
	)
	cmd := &cobra.Command{
		Use:   "convert <type> <value>",
		Short: "Parse a value and optionally convert it to another kind",
		Example: `  isisconv convert double 3.7 --to u8bit
  isisconv convert fvector3 "<1|2|3>" --to dvector4 --labeled
  isisconv convert timestamp "2021-06-07 10:00:00" --format "%Y/%m/%d"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveType(args[0])
			if err != nil {
				return err
			}
			v := data.ParseValue(id, args[1])
			if v == nil {
				return errors.Newf(errors.ErrorTypeUnknownConversion, "cannot parse %q as %s", args[1], id)
			}
			if to != "" {
				toID, err := resolveType(to)
				if err != nil {
					return err
				}
				out := v.CopyByID(toID)
				if out == nil {
					return errors.Newf(errors.ErrorTypeUnknownConversion, "no conversion from %s to %s", id, toID)
				}
				v = out
			}
			if asJSON {
				b, err := v.MarshalJSON()
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), v.ToString(labeled, format))
			return err
		},
	}
	f := cmd.Flags()
	f.StringVar(&to, "to", "", "target type")
	f.StringVar(&format, "format", "", "printf format for numbers, strftime format for dates")
	f.BoolVar(&labeled, "labeled", false, "append the type name")
	f.BoolVar(&asJSON, "json", false, "print the JSON form")
	return cmd
}

func (a *app) scalingCommand() *cobra.Command {
	var from, to, lo, hi, policy string
	cmd := &cobra.Command{
		Use:   "scaling",
		Short: "Compute the scale and offset used to convert a value range",
		Example: `  isisconv scaling --from double --to u8bit --min -5 --max 1000
  isisconv scaling --from s16bit --to u8bit --min 0 --max 200 --policy noupscale`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fromID, err := resolveType(from)
			if err != nil {
				return err
			}
			toID, err := resolveType(to)
			if err != nil {
				return err
			}
			c := data.Lookup(fromID, toID)
			if c == nil {
				return errors.Newf(errors.ErrorTypeUnknownConversion, "no conversion from %s to %s", fromID, toID)
			}

			opt, err := a.cfg.Conversion.Policy()
			if err != nil {
				return err
			}
			if policy != "" {
				if opt, err = numeric.ParsePolicy(policy); err != nil {
					return errors.Wrap(err, errors.ErrorTypeValidation, "invalid --policy")
				}
			}

			sc := c.Scaling(data.ParseValue(fromID, lo), data.ParseValue(fromID, hi), opt)
			if sc.IsZero() {
				return errors.Newf(errors.ErrorTypeValidation, "no scaling for %s in [%s, %s]", c, lo, hi)
			}
			scale, offset := sc.Values()
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s scale=%g offset=%g\n", c, scale, offset)
			return err
		},
	}
	f := cmd.Flags()
	f.StringVar(&from, "from", "", "source type")
	f.StringVar(&to, "to", "", "target type")
	f.StringVar(&lo, "min", "", "smallest source value")
	f.StringVar(&hi, "max", "", "largest source value")
	f.StringVar(&policy, "policy", "", "scaling policy, overrides --scaling")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("min")
	_ = cmd.MarkFlagRequired("max")
	return cmd
}
