package catalog

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/iliyamo/song-sponsorship/internal/model"
)

// SongHeader is the header line written by EncodeSongs.  Import files
// must carry a header line too, but its content is ignored.
var SongHeader = []string{"name", "komponist", "anzahl", "preis", "gesamtpreis", "besetzung"}

// SponsorHeader is the header line of the sponsor export.
var SponsorHeader = []string{
	"Vorname", "Nachname", "Email", "Telefon", "Nachricht",
	"Song Name", "Song Komponist", "Song Anzahl", "Song Preis pro Stück",
	"Song Gesamtpreis", "Song Bewerber", "Song Besetzung",
}

const maxLineBytes = 1 << 20

// column positions of an import row
const (
	colName = iota
	colComposer
	colCount
	colUnitPrice
	colTotalPrice
	colArrangement
)

// DecodeSongs reads an import file: one header line followed by rows of
// name, komponist, anzahl, preis, gesamtpreis, besetzung.  Cells may be
// quoted, blank lines are skipped and missing trailing cells decode as
// empty.  Price cells may carry a currency marker.
func DecodeSongs(r io.Reader) ([]SongRow, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var rows []SongRow
	for line := 0; sc.Scan(); line++ {
		if line == 0 {
			continue // header
		}
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		rec := splitLine(text)
		if blank(rec) {
			continue
		}
		rows = append(rows, SongRow{
			Name:        cell(rec, colName),
			Composer:    cell(rec, colComposer),
			Arrangement: cell(rec, colArrangement),
			Count:       parseCount(cell(rec, colCount)),
			UnitPrice:   parseAmount(cell(rec, colUnitPrice)),
			TotalPrice:  parseAmount(cell(rec, colTotalPrice)),
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return rows, nil
}

// EncodeSongs writes rows in the import format so the file can be loaded
// again with DecodeSongs.
func EncodeSongs(w io.Writer, rows []SongRow) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(SongHeader, ",") + "\n"); err != nil {
		return err
	}
	for _, r := range rows {
		line := quoteLine(
			r.Name,
			r.Composer,
			formatInt(r.Count),
			formatAmount(r.UnitPrice),
			formatAmount(r.TotalPrice),
			r.Arrangement,
		)
		if _, err := bw.WriteString(line); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// EncodeSponsors writes the sponsor export.  The song columns come from
// the preloaded Song relation; a sponsor whose song is gone gets empty
// song cells.
func EncodeSponsors(w io.Writer, sponsors []model.Sponsor) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(SponsorHeader, ",") + "\n"); err != nil {
		return err
	}
	for _, s := range sponsors {
		cells := []string{s.FirstName, s.LastName, s.Email, s.Phone, s.Message}
		if song := s.Song; song != nil {
			cells = append(cells,
				song.Name,
				song.Composer,
				strconv.Itoa(song.Count),
				strconv.FormatFloat(song.UnitPrice, 'f', -1, 64),
				strconv.FormatFloat(song.TotalPrice, 'f', -1, 64),
				strconv.Itoa(song.ApplicantCount),
				song.Arrangement,
			)
		} else {
			cells = append(cells, "", "", "", "", "", "", "")
		}
		if _, err := bw.WriteString(quoteLine(cells...)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func quoteLine(cells ...string) string {
	var b strings.Builder
	for i, c := range cells {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(c, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteByte('\n')
	return b.String()
}

// splitLine splits one line on commas outside double quotes.  Quotes
// delimit a cell and are dropped, a doubled quote inside a quoted cell is
// kept as one quote, and whitespace around each cell is trimmed.
func splitLine(line string) []string {
	var (
		cells    []string
		b        strings.Builder
		inQuotes bool
	)
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"' && inQuotes && i+1 < len(line) && line[i+1] == '"':
			b.WriteByte('"')
			i++
		case c == '"':
			inQuotes = !inQuotes
		case c == ',' && !inQuotes:
			cells = append(cells, strings.TrimSpace(b.String()))
			b.Reset()
		default:
			b.WriteByte(c)
		}
	}
	return append(cells, strings.TrimSpace(b.String()))
}

func cell(rec []string, i int) string {
	if i < len(rec) {
		return rec[i]
	}
	return ""
}

func blank(rec []string) bool {
	for _, c := range rec {
		if c != "" {
			return false
		}
	}
	return true
}

// parseAmount parses a price such as "2.50 €", "2,50" or "EUR 1.234,50".
// The right-most separator is taken as the decimal point.
func parseAmount(s string) *float64 {
	s = strings.NewReplacer("€", "", "EUR", "", " ", "", "\u00a0", "").Replace(s)
	if s == "" {
		return nil
	}
	if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func parseCount(s string) *int {
	v := parseAmount(s)
	if v == nil || *v != math.Trunc(*v) || math.Abs(*v) > math.MaxInt32 {
		return nil
	}
	n := int(*v)
	return &n
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatAmount(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
