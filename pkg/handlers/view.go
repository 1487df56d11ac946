package handlers

import (
	"fmt"
	"html/template"
	"io/fs"
	"strconv"
	"time"

	"github.com/jinzhu/inflection"

	"github.com/ekaya-inc/ekaya-vizboard/pkg/adapters/datasource"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/charts"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/models"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/session"
)

// PageTitle heads the dashboard page.
const PageTitle = "Data Visualization Dashboard"

// noHue is the hue select entry meaning "no grouping".
const noHue = "None"

type option struct {
	Value    string
	Label    string
	Selected bool
}

// pageView is everything the dashboard template reads. It is built while the
// session lock is held so the template never touches live State.
type pageView struct {
	Title   string
	Flashes []session.Flash

	ShowContact  bool
	ContactName  string
	ContactEmail string

	Connection  models.ConnectionParams
	Drivers     []option
	APIKey      string
	APIKeyLabel string

	Schema        []models.SchemaTable
	SchemaCaption string

	ShowSQLInput bool
	SQLText      string

	ShowPrompt       bool
	Instruction      string
	HasGenerated     bool
	ShowGeneratedSQL bool
	GeneratedSQL     string
	QueryError       bool

	Preview        *models.ResultTable
	PreviewCaption string

	ChartKinds []option
	ChartTitle string
	XOptions   []option
	YOptions   []option
	HueOptions []option

	HasFigure   bool
	FigureTitle string
}

type viewSettings struct {
	ContactName  string
	ContactEmail string
	PreviewRows  int
	APIKeyLabel  string
}

// buildPageView snapshots st. The caller holds st's lock and has already
// taken the flashes.
func buildPageView(st *session.State, flashes []session.Flash, adapters []datasource.DatasourceAdapterInfo, vs viewSettings) pageView {
	v := pageView{
		Title:   PageTitle,
		Flashes: flashes,

		ShowContact:  st.ShowContact,
		ContactName:  vs.ContactName,
		ContactEmail: vs.ContactEmail,

		Connection:  st.Connection,
		Drivers:     driverOptions(adapters, st.Connection.DriverOrDefault()),
		APIKey:      st.APIKey,
		APIKeyLabel: vs.APIKeyLabel,

		ShowSQLInput: st.ShowSQLInput,
		SQLText:      st.SQLText,

		ShowPrompt:       st.ShowPrompt,
		Instruction:      st.Instruction,
		HasGenerated:     st.HasGenerated,
		ShowGeneratedSQL: st.ShowGeneratedSQL,
		GeneratedSQL:     st.GeneratedSQL,
		QueryError:       st.QueryError,

		ChartKinds: kindOptions(st.Chart.Kind),
		ChartTitle: st.Chart.Title,

		HasFigure: st.Figure != nil,
	}

	if st.ShowSchema && st.SchemaLoaded {
		v.Schema = st.Schema.Entries()
		v.SchemaCaption = countNoun(st.Schema.Len(), "table")
	}

	if st.Result != nil {
		v.Preview = st.Result.Head(vs.PreviewRows)
		v.PreviewCaption = fmt.Sprintf("Showing %d of %s, %s",
			v.Preview.RowCount(),
			countNoun(st.Result.RowCount(), "row"),
			countNoun(len(st.Result.Columns), "column"))
		v.XOptions = columnOptions(st.Result.Columns, st.Chart.X, 0)
		v.YOptions = columnOptions(st.Result.Columns, st.Chart.Y, 1)
		v.HueOptions = append([]option{{Value: "", Label: noHue, Selected: st.Chart.Hue == ""}},
			columnOptions(st.Result.Columns, st.Chart.Hue, -1)...)
	}

	if st.Figure != nil {
		v.FigureTitle = st.Figure.Title
	}
	return v
}

// countNoun renders "1 table", "3 tables".
func countNoun(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + inflection.Plural(noun)
}

func driverOptions(adapters []datasource.DatasourceAdapterInfo, current string) []option {
	opts := make([]option, 0, len(adapters))
	for _, a := range adapters {
		opts = append(opts, option{Value: a.Type, Label: a.DisplayName, Selected: a.Type == current})
	}
	return opts
}

func kindOptions(current charts.Kind) []option {
	all := charts.AllKinds()
	opts := make([]option, 0, len(all))
	for _, k := range all {
		opts = append(opts, option{Value: k.String(), Label: k.Label(), Selected: k == current})
	}
	return opts
}

// columnOptions lists columns, selecting current or, when current is not a
// column, the column at fallback (if any).
func columnOptions(columns []string, current string, fallback int) []option {
	found := false
	for _, c := range columns {
		if c == current {
			found = true
			break
		}
	}

	opts := make([]option, len(columns))
	for i, c := range columns {
		selected := c == current
		if !found && i == fallback {
			selected = true
		}
		opts[i] = option{Value: c, Label: c, Selected: selected}
	}
	return opts
}

// formatCell renders one result value the way the preview table shows it.
func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return "None"
	case string:
		return x
	case []byte:
		return string(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format(time.DateOnly)
		}
		return x.Format(time.DateTime)
	default:
		return fmt.Sprint(x)
	}
}

// parseTemplates loads every template under templates/ in fsys.
func parseTemplates(fsys fs.FS) (*template.Template, error) {
	return template.New("").
		Funcs(template.FuncMap{"cell": formatCell}).
		ParseFS(fsys, "templates/*.html")
}
