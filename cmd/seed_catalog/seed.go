package main

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/Peajes-api/internal/domain/entity"
)

type tollRow struct {
	id, name, location            string
	tag, registered, unregistered decimal.Decimal
}

type clientRow struct {
	plate, name, email, phone string
	registration              string
	tagID                     string
	balance                   decimal.Decimal
}

func readTollsFile(path string) ([]tollRow, error) {
	r, err := openCSV(path)
	if err != nil {
		return nil, err
	}
	return parseTolls(r)
}

func readClientsFile(path string) ([]clientRow, error) {
	r, err := openCSV(path)
	if err != nil {
		return nil, err
	}
	return parseClients(r)
}

// openCSV lee el archivo completo; si no es UTF-8 válido lo decodifica como ISO-8859-1.
func openCSV(path string) (io.Reader, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return decodeLatin1IfNeeded(raw), nil
}

func decodeLatin1IfNeeded(raw []byte) io.Reader {
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	if utf8.Valid(raw) {
		return bytes.NewReader(raw)
	}
	return transform.NewReader(bytes.NewReader(raw), charmap.ISO8859_1.NewDecoder())
}

// readRecords devuelve cada fila como mapa columna → valor (encabezados en minúsculas).
func readRecords(r io.Reader) ([]map[string]string, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("encabezado: %w", err)
	}
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(header[i]))
	}
	var out []map[string]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		m := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(rec) {
				m[h] = strings.TrimSpace(rec[i])
			}
		}
		out = append(out, m)
	}
	return out, nil
}

// parseTolls columnas: peaje_id, nombre, carretera, km, monto_no_registrado, monto_registrado, monto_tag.
// La tarifa base es la de no registrado.
func parseTolls(r io.Reader) ([]tollRow, error) {
	recs, err := readRecords(r)
	if err != nil {
		return nil, err
	}
	var out []tollRow
	for n, rec := range recs {
		id := rec["peaje_id"]
		if id == "" {
			continue
		}
		t := tollRow{id: id, name: rec["nombre"], location: location(rec["carretera"], rec["km"])}
		for col, dst := range map[string]*decimal.Decimal{
			"monto_no_registrado": &t.unregistered,
			"monto_registrado":    &t.registered,
			"monto_tag":           &t.tag,
		} {
			v, err := parseMoney(rec[col])
			if err != nil {
				return nil, fmt.Errorf("fila %d, %s: %w", n+2, col, err)
			}
			*dst = v
		}
		if !t.unregistered.IsPositive() {
			return nil, fmt.Errorf("fila %d: peaje %s sin monto_no_registrado", n+2, id)
		}
		out = append(out, t)
	}
	return out, nil
}

// parseClients columnas: placa, nombre, email, telefono, tipo_usuario, tiene_tag, tag_id, saldo_disponible.
func parseClients(r io.Reader) ([]clientRow, error) {
	recs, err := readRecords(r)
	if err != nil {
		return nil, err
	}
	var out []clientRow
	for n, rec := range recs {
		plate := rec["placa"]
		if plate == "" {
			continue
		}
		c := clientRow{
			plate:        plate,
			name:         rec["nombre"],
			email:        rec["email"],
			phone:        rec["telefono"],
			registration: registrationClass(rec["tipo_usuario"]),
		}
		if toBool(rec["tiene_tag"]) && rec["tag_id"] != "" {
			c.tagID = rec["tag_id"]
			bal, err := parseMoney(rec["saldo_disponible"])
			if err != nil {
				return nil, fmt.Errorf("fila %d, saldo_disponible: %w", n+2, err)
			}
			if bal.IsNegative() {
				return nil, fmt.Errorf("fila %d: saldo negativo para %s", n+2, plate)
			}
			c.balance = bal
		}
		out = append(out, c)
	}
	return out, nil
}

func writeSeedSQL(w io.Writer, tolls []tollRow, clients []clientRow) error {
	var b strings.Builder
	b.WriteString("-- Catálogo de peajes, vehículos y tags\n")
	b.WriteString("-- Generado por cmd/seed_catalog\n\n")

	if len(tolls) > 0 {
		b.WriteString("-- 1. Peajes\n")
		b.WriteString("INSERT INTO toll_points (id, name, location, base_fee, tag_fee, registered_fee, unregistered_fee) VALUES\n")
		for i, t := range tolls {
			fmt.Fprintf(&b, "  ('%s', '%s', '%s', %s, %s, %s, %s)",
				escapeSQL(t.id), escapeSQL(t.name), escapeSQL(t.location),
				t.unregistered.StringFixed(2), sqlFee(t.tag), sqlFee(t.registered), t.unregistered.StringFixed(2))
			b.WriteString(sep(i, len(tolls)))
		}
		b.WriteString("ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, location = EXCLUDED.location,\n")
		b.WriteString("  base_fee = EXCLUDED.base_fee, tag_fee = EXCLUDED.tag_fee,\n")
		b.WriteString("  registered_fee = EXCLUDED.registered_fee, unregistered_fee = EXCLUDED.unregistered_fee;\n\n")
	}

	if len(clients) > 0 {
		b.WriteString("-- 2. Vehículos\n")
		b.WriteString("INSERT INTO accounts (plate, owner_name, email, phone, registration_class, tag_id) VALUES\n")
		for i, c := range clients {
			tag := "NULL"
			if c.tagID != "" {
				tag = "'" + escapeSQL(c.tagID) + "'"
			}
			fmt.Fprintf(&b, "  ('%s', '%s', '%s', '%s', '%s', %s)",
				escapeSQL(c.plate), escapeSQL(c.name), escapeSQL(c.email), escapeSQL(c.phone), c.registration, tag)
			b.WriteString(sep(i, len(clients)))
		}
		b.WriteString("ON CONFLICT (plate) DO UPDATE SET owner_name = EXCLUDED.owner_name, email = EXCLUDED.email,\n")
		b.WriteString("  phone = EXCLUDED.phone, registration_class = EXCLUDED.registration_class, tag_id = EXCLUDED.tag_id;\n\n")
	}

	// 3. Tags: solo se insertan; el saldo de un tag existente es del ledger
	if countTags(clients) > 0 {
		b.WriteString("-- 3. Tags\n")
		for _, c := range clients {
			if c.tagID == "" {
				continue
			}
			fmt.Fprintf(&b, "INSERT INTO tags (tag_id, plate, status, balance) VALUES ('%s', '%s', '%s', %s)\n",
				escapeSQL(c.tagID), escapeSQL(c.plate), entity.TagStatusActive, c.balance.StringFixed(2))
			b.WriteString("ON CONFLICT (tag_id) DO NOTHING;\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func countTags(clients []clientRow) int {
	n := 0
	for _, c := range clients {
		if c.tagID != "" {
			n++
		}
	}
	return n
}

func sep(i, n int) string {
	if i < n-1 {
		return ",\n"
	}
	return "\n"
}

func sqlFee(d decimal.Decimal) string {
	if !d.IsPositive() {
		return "NULL"
	}
	return d.StringFixed(2)
}

func parseMoney(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func location(road, km string) string {
	road, km = strings.TrimSpace(road), strings.TrimSpace(km)
	if km == "" {
		return road
	}
	if _, err := strconv.Atoi(km); err != nil {
		return road
	}
	return strings.TrimSpace(road + " km " + km)
}

func registrationClass(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "registrado", "registered":
		return entity.RegistrationRegistered
	default:
		return entity.RegistrationUnregistered
	}
}

func toBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "si", "sí":
		return true
	}
	return false
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
