// Package settle is the engine behind shared expenses between friends and
// groups. It turns validated records into balances and settlement suggestions.
//
// The engine is made of pure functions over immutable values:
//   - Normalize turns expenses, settlements and loans into directed entries
//     (who owes whom, how much, in which currency).
//   - NetBalances and Aggregate fold entries into signed balances, per
//     currency, for a group, a pair of friends, or everything personal.
//   - Simplify reduces a balance table to the fewest transfers that zero it.
//   - AddRepayment, CloseLoan and Outstanding track a loan against its repayments.
//
// Amounts are integers in minor units (cents) paired with an ISO-4217 code.
// Currencies are never converted. Conversion from and to display strings
// happens at the edge, in the records codec and in the renderer.
//
// Per-account balances live in the wallet package.
package settle
