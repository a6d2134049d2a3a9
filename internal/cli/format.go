package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fpang/roomedit/internal/orchestrator"
	"github.com/fpang/roomedit/internal/roomedit"
)

// PrintTurn writes a short summary of a turn.
func PrintTurn(w io.Writer, res *orchestrator.TurnResult) {
	fmt.Fprintf(w, "Intent: %s\n", res.Plan.Instruction.Intent)
	for _, a := range res.Plan.Anomalies {
		fmt.Fprintf(w, "Note: %s\n", a)
	}
	PrintTasks(w, res.Tasks)
	if res.State == nil {
		fmt.Fprintln(w, "Dry run: no images generated")
		return
	}
	fmt.Fprintf(w, "Image: %s\n", res.State.Image)
	switch res.Detection {
	case roomedit.DetectionFailed:
		fmt.Fprintln(w, "Object detection failed; objects will be detected on the next turn")
	case roomedit.DetectionEmpty:
		fmt.Fprintln(w, "No objects detected")
	}
	if len(res.State.Catalog) > 0 {
		fmt.Fprintf(w, "Objects (%s):\n", res.State.CatalogStatus)
		PrintCatalog(w, res.State.Catalog)
	}
}

// PrintTasks writes one line per task.
func PrintTasks(w io.Writer, tasks []roomedit.TaskView) {
	for i, t := range tasks {
		switch t.Kind {
		case roomedit.TaskGenerate:
			fmt.Fprintf(w, "  %d. generate %s\n", i+1, t.Size)
		case roomedit.TaskInpaint:
			base := t.BaseImage
			if t.ChainedFrom != nil {
				base = fmt.Sprintf("output of step %d", *t.ChainedFrom+1)
			}
			fmt.Fprintf(w, "  %d. inpaint %s on %s, mask x=%d y=%d %dx%d\n",
				i+1, t.TargetID, base, t.Mask.X, t.Mask.Y, t.Mask.Width, t.Mask.Height)
		}
	}
}

// PrintCatalog writes one line per object.
func PrintCatalog(w io.Writer, catalog roomedit.Catalog) {
	for _, o := range catalog {
		fmt.Fprintf(w, "  [%s] %s (%s, %s)\n", o.ID, o.Label, o.Category, roomedit.PositionHint(o.BBox))
	}
}

// DescribeRejection renders a pipeline error for a terminal user.
func DescribeRejection(err error) string {
	var (
		amb *roomedit.AmbiguityError
		con *roomedit.ConstraintError
		val *roomedit.ValidationError
	)
	switch {
	case errors.As(err, &amb):
		return fmt.Sprintf("%q could mean: %s", amb.Phrase, strings.Join(amb.Labels(), ", "))
	case errors.As(err, &con):
		return fmt.Sprintf("%s: %s. %s", con.Constraint, con.Reason, con.Suggestion)
	case errors.As(err, &val):
		msg := val.Reason
		if msg != "" {
			msg = strings.ToUpper(msg[:1]) + msg[1:]
		}
		if val.Suggestion != "" {
			msg += ". " + val.Suggestion
		}
		return msg
	case errors.Is(err, roomedit.ErrCannotDetermineTarget):
		return "Could not tell which object to change. Name it, or use --object with an id from the catalog"
	}
	return err.Error()
}
