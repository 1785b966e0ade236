// Package api implements the HTTP REST API and chart image endpoints.
//
// New(ds, settings) returns an http.Handler that serves:
//
//	GET /api/v1/sites              sites, payload bounds, dropdown and slider config
//	GET /api/v1/pie                ?site= success counts plus the pie figure
//	GET /api/v1/scatter            ?site=&low=&high= points plus the scatter figure
//	GET /api/v1/scatter.xlsx       the same selection as an XLSX workbook
//	GET /charts/pie.{svg,png}      rendered pie chart
//	GET /charts/scatter.{svg,png}  rendered scatter chart
//
// site defaults to ALL; low and high default to the dataset's payload bounds.
// An unknown site yields empty results, never an error. A non-numeric bound
// or an inverted range is a 400. Chart endpoints accept width and height.
//
// All JSON endpoints:
//   - Respond with Content-Type: application/json
//   - Return 405 for non-GET methods
//   - Report failures as {"error": "..."}
//
// Compress wraps any handler with brotli content encoding.
package api
