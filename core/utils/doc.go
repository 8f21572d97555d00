// Package utils provides small dynamic-value conversion helpers.
//
// Provider payloads are stored verbatim alongside the typed columns, and the
// pool linking pass has to interpret values decoded from those blobs without
// knowing their exact JSON type (numbers arrive as float64, booleans
// sometimes as "0"/"1" strings). These helpers centralise that coercion.
package utils
