package http

// Choices offered by the entry form. The record keeps the chosen label
// verbatim, so the lists here are presentation defaults, not an enum.

// OtherValue is the sentinel a select uses when the free-text input
// next to it holds the real value.
const OtherValue = "__other__"

// OtherFallback replaces an empty free-text value at submission.
const OtherFallback = "อื่นๆ"

// Choice pairs a stored value with its display label.
type Choice struct {
	Value string
	Label string
}

var CategoriesIncome = []Choice{
	{Value: "เงินเดือน", Label: "เงินเดือน"},
	{Value: "โบนัส", Label: "โบนัส"},
	{Value: "งานเสริม", Label: "งานเสริม"},
	{Value: "ลงทุน", Label: "ลงทุน"},
	{Value: "คืนเงิน/ยืมคืน", Label: "คืนเงิน/ยืมคืน"},
	{Value: OtherValue, Label: OtherFallback},
}

var CategoriesExpense = []Choice{
	{Value: "อาหาร/เครื่องดื่ม", Label: "อาหาร/เครื่องดื่ม"},
	{Value: "ค่าขนส่ง", Label: "ค่าขนส่ง"},
	{Value: "ค่าที่อยู่", Label: "ค่าที่อยู่"},
	{Value: "ค่าโทร/เน็ต", Label: "ค่าโทร/เน็ต"},
	{Value: "สันทนาการ", Label: "สันทนาการ"},
	{Value: "ซื้อของใช้", Label: "ซื้อของใช้"},
	{Value: "สุขภาพ", Label: "สุขภาพ"},
	{Value: "การศึกษา", Label: "การศึกษา"},
	{Value: OtherValue, Label: OtherFallback},
}

var PaymentMethods = []Choice{
	{Value: "transfer", Label: "โอนเงิน"},
	{Value: "cash", Label: "เงินสด"},
	{Value: "wallet", Label: "วอลเลท"},
	{Value: "card", Label: "บัตรเครดิต/เดบิต"},
	{Value: OtherValue, Label: OtherFallback},
}

var Banks = []Choice{
	{Value: "BBL", Label: "Bangkok Bank (BBL)"},
	{Value: "SCB", Label: "Siam Commercial Bank (SCB)"},
	{Value: "KBANK", Label: "Kasikornbank (KBank)"},
	{Value: "BAY", Label: "Bank of Ayudhya (Krungsri)"},
	{Value: "KTB", Label: "Krungthai Bank (KTB)"},
	{Value: "GSB", Label: "Government Savings Bank (GSB)"},
	{Value: "TTB", Label: "TMBThanachart Bank (ttb)"},
	{Value: OtherValue, Label: OtherFallback},
}

var PresetEmojis = []string{"💰", "🍜", "🚗", "🛒", "📱", "🏠", "✈️", "🎁", "💵", "📊", "🍕", "☕"}

// resolveChoice expands the other-sentinel: when the select carries
// OtherValue the free-text input wins, falling back to OtherFallback
// when that is blank too.
func resolveChoice(selected, freeText string) string {
	if selected != OtherValue {
		return selected
	}
	if freeText == "" {
		return OtherFallback
	}
	return freeText
}
