// Package protocol implements the text format missions are submitted in.
//
// Input layout:
//
//	5 3          grid upper-right corner (each bound at most 50)
//	1 1 E        robot: x y orientation
//	RFRFRFRF     instructions: 1..100 of L, R, F
//	3 2 N        next robot...
//	FRRFLLFFRRFLL
//
// Output is one line per robot, "x y O" with " LOST" appended for robots that
// fell off the grid.
//
// Parse validates the whole input before anything is simulated and reports
// the first problem as a *FormatError carrying the 0-based line index. The
// engine is never handed input that failed validation.
package protocol
