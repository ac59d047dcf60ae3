package http

import (
	"net/http"
	"net/url"

	"github.com/Cherval/me-my-cal/internal/core"
)

type dashboardData struct {
	Demo        bool
	Filter      core.Filter
	Mode        string
	FilterQuery string

	Summary      summaryData
	Transactions transactionsData
	Charts       chartsData

	CategoriesIncome  []Choice
	CategoriesExpense []Choice
	PaymentMethods    []Choice
	Banks             []Choice
	PresetEmojis      []string
	OtherValue        string
}

type gridData struct {
	Demo        bool
	Filter      core.Filter
	Mode        string
	FilterQuery string

	Rows       []transactionRow
	FetchError string

	PaymentMethods []Choice
	Banks          []Choice
}

type summaryData struct {
	Income   string
	Expense  string
	Balance  string
	Negative bool
}

type transactionRow struct {
	ID       string
	Type     string
	Sign     string
	Amount   string
	Category string
	Emoji    string
	Note     string
	Method   string
	Bank     string
	Party    string
	Item     string
	Location string
	Date     string

	// Raw selection values, for prefilled edit forms.
	MethodValue string
	BankValue   string
	Raw         core.Transaction
}

type transactionsData struct {
	Rows        []transactionRow
	FetchError  string
	FilterQuery string
}

type chartRow struct {
	Category     string
	Income       string
	Expense      string
	IncomeWidth  int
	ExpenseWidth int
}

type chartsData struct {
	Rows []chartRow
}

func (s *Server) renderDashboard(w http.ResponseWriter, r *http.Request, sess *Session) {
	f := parseFilter(r.URL.Query())
	visible := f.Apply(sess.Store.Transactions())

	data := dashboardData{
		Demo:        sess.Demo,
		Filter:      f,
		Mode:        string(f.Mode),
		FilterQuery: filterQuery(f),

		Summary:      buildSummary(visible),
		Transactions: buildTransactions(visible, sess.Store.Errors().Fetch, filterQuery(f)),
		Charts:       buildCharts(visible),

		CategoriesIncome:  CategoriesIncome,
		CategoriesExpense: CategoriesExpense,
		PaymentMethods:    PaymentMethods,
		Banks:             Banks,
		PresetEmojis:      PresetEmojis,
		OtherValue:        OtherValue,
	}
	s.render(w, r, "index.html", data)
}

// handleGrid renders the full-width tabular view of the filtered set,
// with an inline edit form per row covering every mutable column.
func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.registry.Lookup(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	f := parseFilter(r.URL.Query())
	visible := f.Apply(sess.Store.Transactions())

	tx := buildTransactions(visible, sess.Store.Errors().Fetch, filterQuery(f))
	s.render(w, r, "grid.html", gridData{
		Demo:        sess.Demo,
		Filter:      f,
		Mode:        string(f.Mode),
		FilterQuery: filterQuery(f),
		Rows:        tx.Rows,
		FetchError:  tx.FetchError,

		PaymentMethods: PaymentMethods,
		Banks:          Banks,
	})
}

// handleSummary renders the income/expense/balance cards.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	f := parseFilter(r.URL.Query())
	visible := f.Apply(sess.Store.Transactions())

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	s.render(w, r, "summary.html", buildSummary(visible))
}

// handleTransactions renders the filtered transaction list.
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	f := parseFilter(r.URL.Query())
	visible := f.Apply(sess.Store.Transactions())

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	s.render(w, r, "transactions.html", buildTransactions(visible, sess.Store.Errors().Fetch, filterQuery(f)))
}

// handleCharts renders per-category income and expense bars.
func (s *Server) handleCharts(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	f := parseFilter(r.URL.Query())
	visible := f.Apply(sess.Store.Transactions())

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	s.render(w, r, "charts.html", buildCharts(visible))
}

func buildSummary(list []core.Transaction) summaryData {
	sum := core.Aggregate(list)
	return summaryData{
		Income:   core.FormatBaht(sum.Income),
		Expense:  core.FormatBaht(sum.Expense),
		Balance:  core.FormatBaht(sum.Balance),
		Negative: sum.Balance.Satang < 0,
	}
}

func buildTransactions(list []core.Transaction, fetchError, query string) transactionsData {
	data := transactionsData{FetchError: fetchError, FilterQuery: query}
	for _, t := range list {
		sign := "-"
		if t.Type == core.Income {
			sign = "+"
		}
		data.Rows = append(data.Rows, transactionRow{
			ID:       t.ID,
			Type:     string(t.Type),
			Sign:     sign,
			Amount:   core.FormatBaht(t.Amount),
			Category: t.Category,
			Emoji:    deref(t.Emoji),
			Note:     deref(t.Note),
			Method:   choiceLabel(PaymentMethods, deref(t.Method)),
			Bank:     choiceLabel(Banks, deref(t.Bank)),
			Party:    deref(t.Party),
			Item:     deref(t.Item),
			Location: deref(t.Location),
			Date:     displayDate(t.CreatedAt),

			MethodValue: deref(t.Method),
			BankValue:   deref(t.Bank),
			Raw:         t,
		})
	}
	return data
}

// chartCategoryLimit caps the per-category bars at the first ten
// categories of the visible set.
const chartCategoryLimit = 10

func buildCharts(list []core.Transaction) chartsData {
	rows := core.BreakdownByCategory(list, chartCategoryLimit)

	var max int64
	for _, row := range rows {
		if row.Income.Satang > max {
			max = row.Income.Satang
		}
		if row.Expense.Satang > max {
			max = row.Expense.Satang
		}
	}

	data := chartsData{}
	for _, row := range rows {
		data.Rows = append(data.Rows, chartRow{
			Category:     row.Category,
			Income:       core.FormatBaht(row.Income),
			Expense:      core.FormatBaht(row.Expense),
			IncomeWidth:  barWidth(row.Income.Satang, max),
			ExpenseWidth: barWidth(row.Expense.Satang, max),
		})
	}
	return data
}

// barWidth scales a value to a rounded percent of the chart maximum,
// clamped so small non-zero bars stay visible.
func barWidth(v, max int64) int {
	if max <= 0 || v <= 0 {
		return 0
	}
	width := int((v*100 + max/2) / max)
	if width < 2 {
		width = 2
	}
	if width > 100 {
		width = 100
	}
	return width
}

func filterQuery(f core.Filter) string {
	v := url.Values{}
	v.Set("filter", string(f.Mode))
	if f.Month != "" {
		v.Set("month", f.Month)
	}
	if f.Start != "" {
		v.Set("start", f.Start)
	}
	if f.End != "" {
		v.Set("end", f.End)
	}
	return v.Encode()
}

// displayDate keeps the raw value visible when it cannot be parsed.
func displayDate(createdAt string) string {
	if d, ok := core.ParseCreatedAt(createdAt); ok {
		return d.Format("2 Jan 2006 15:04")
	}
	return createdAt
}

func choiceLabel(choices []Choice, value string) string {
	for _, c := range choices {
		if c.Value == value {
			return c.Label
		}
	}
	return value
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
