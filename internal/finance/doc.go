// Package finance is the projection and cycle-accounting engine. Every
// function is pure: it takes already-loaded collections and returns derived
// numbers, never touching storage or the network.
//
// The engine covers:
//   - billing cycle and due-date projection for credit cards,
//   - installment plan amortization under a calendar or a ledger policy,
//   - payment method consumption and fixed-cost load,
//   - monthly recurring cost,
//   - portfolio valuation and total patrimony in ARS and USD.
package finance
