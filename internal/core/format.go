package core

import (
	"fmt"
	"strings"
	"time"
)

// pt-BR month names, time.Month indexed from January == 1.
var monthNames = [13]string{"",
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

var monthAbbrevs = [13]string{"",
	"jan", "fev", "mar", "abr", "mai", "jun",
	"jul", "ago", "set", "out", "nov", "dez",
}

// FormatBRL renders an amount as Brazilian Real with two decimals and the
// currency symbol, e.g. "R$ 1.234,56". Negative amounts keep the sign in
// front of the symbol.
func FormatBRL(m Money) string {
	cents := m.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	whole := cents / 100
	frac := cents % 100
	return fmt.Sprintf("%sR$ %s,%02d", sign, groupThousands(whole), frac)
}

func groupThousands(n int64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// FormatDate renders a date as dd/MM/yyyy.
func FormatDate(d Date) string {
	return d.Time.Format("02/01/2006")
}

// FormatDateShort renders a date as "dd mmm" with the pt-BR month
// abbreviation, for compact listings.
func FormatDateShort(d Date) string {
	return fmt.Sprintf("%02d %s", d.Day(), monthAbbrevs[int(d.Month())])
}

// FormatMonthYear renders a cursor as the full localized month name plus
// year, first letter capitalized: "Novembro de 2025".
func FormatMonthYear(c MonthCursor) string {
	name := monthNames[int(c.Month)]
	return strings.ToUpper(name[:1]) + name[1:] + fmt.Sprintf(" de %d", c.Year)
}

// MonthName returns the lowercase pt-BR name of a month.
func MonthName(m time.Month) string {
	return monthNames[int(m)]
}
