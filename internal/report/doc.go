// Package report renders scan results and comparisons.
//
// Every format implements Writer:
//   - TextWriter replays the diagnostic rows, optionally with a
//     "==> path <==" header, a final depth summary and block balances
//   - JSONWriter encodes a result with its derived status and max depth
//   - MarkdownWriter builds a GitHub Flavored Markdown report with tables,
//     an alert for the status and a Mermaid chart of the token counts
//
// MultiWriter fans one result out to several writers. Comparisons between
// two saved scans are written with WriteComparisonText,
// WriteComparisonMarkdown or JSONWriter.WriteValue.
package report
