// # csvstream: Buffer-Oriented CSV Encoding for Go
//
// csvstream turns records and structured values into RFC 4180 CSV. It never
// performs I/O: every write appends to a byte slice owned by the caller, so
// rows can be pooled, batched, compressed or sent anywhere.
//
// # Features
//
// - Field, record and value-level writes (`Writer.WriteField`, `Writer.WriteRecord`, `Writer.Serialize`).
// - Header rows inferred from struct fields (`csv:"name"` tags) on the first serialized value.
// - Field-count consistency with `LengthError`, or flexible records on request.
// - Configurable delimiter, quote, escape, quote style (`QuoteAlways`, `QuoteNecessary`, `QuoteNonNumeric`, `QuoteNever`) and terminator.
// - Pull (`Rows`, `Iter`) and push (`Stream`) adapters producing one encoded row per input value.
//
// # Getting Started
//
//	type City struct {
//	    Name       string `csv:"city"`
//	    Population uint64 `csv:"popcount"`
//	}
//
//	w := csvstream.NewWriter(csvstream.WithDelimiter(';'))
//	buf, err := w.Serialize(nil, City{"Boston", 4628910})
//	// buf == "city;popcount\nBoston;4628910\n"
//
// Values are walked through the structure package, which any type can
// implement directly to control its own shape.
package csvstream
