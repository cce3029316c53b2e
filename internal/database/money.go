package database

import "github.com/shopspring/decimal"

// MoneyScale is the number of decimal places money columns hold.
const MoneyScale = 2

// RoundMoney rounds a summed money value to MoneyScale places. SQLite keeps
// decimal columns as REAL, so SUM over them carries binary float error.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}
