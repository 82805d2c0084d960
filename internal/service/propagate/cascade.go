package propagate

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"sheet-sync/internal/constants"
	"sheet-sync/internal/storage"
)

var volumePatterns = compileVolumePatterns()

type volumePattern struct {
	re   *regexp.Regexp
	repl string
}

func compileVolumePatterns() []volumePattern {
	out := make([]volumePattern, 0, len(constants.VolumeReplacements))
	for _, r := range constants.VolumeReplacements {
		out = append(out, volumePattern{
			re:   regexp.MustCompile("(?i)" + regexp.QuoteMeta(r[0])),
			repl: r[1],
		})
	}
	return out
}

// CombineNames склеивает русское и английское наименование для ДС
func CombineNames(ru, en string) string {
	switch {
	case ru != "" && en != "":
		sep := " / "
		if strings.HasSuffix(strings.TrimSpace(ru), ",") {
			sep = " "
		}
		return ru + sep + en
	case ru != "":
		return ru
	default:
		return en
	}
}

// EnglishVolume переводит обозначения объема на английский: "50 мл" -> "50 ml"
func EnglishVolume(volume string) string {
	for _, p := range volumePatterns {
		volume = p.re.ReplaceAllLiteralString(volume, p.repl)
	}
	return strings.Join(strings.Fields(volume), " ")
}

// certFields - исходные поля строки листа сертификации
type certFields struct {
	NameRU   string
	NameEN   string
	Volume   string
	TNVED    string
	VolumeEN string
}

// certDerived - пересчитанные поля сертификации
type certDerived struct {
	DSName    string
	VolumeEN  string
	InvoiceRU string
	InvoiceEN string

	writeDSName   bool
	writeVolumeEN bool
}

func deriveCertification(f certFields, volumeChanged bool) certDerived {
	d := certDerived{
		DSName:        CombineNames(f.NameRU, f.NameEN),
		VolumeEN:      f.VolumeEN,
		writeDSName:   f.NameRU != "" || f.NameEN != "",
		writeVolumeEN: volumeChanged,
	}
	if volumeChanged {
		d.VolumeEN = EnglishVolume(f.Volume)
	}

	d.InvoiceRU = strings.TrimSpace(d.DSName + " " + f.Volume)
	volEN := d.VolumeEN
	if volEN == "" {
		volEN = f.VolumeEN
	}
	d.InvoiceEN = strings.TrimSpace(f.NameEN + " " + volEN)

	if f.TNVED != "" {
		d.InvoiceRU += "\n" + constants.CertTNVEDLabel + f.TNVED
		d.InvoiceEN += "\n" + constants.CertCodeLabel + f.TNVED
	}
	return d
}

// cascade пересчитывает производные поля строки листа сертификации.
// nil - правка не затрагивает поля-триггеры.
func (s *Service) cascade(ctx context.Context, docID, sheet string, row int, header string) *storage.CascadeResult {
	const op = "service.propagate.cascade"

	if sheet != constants.SheetCertification || row < 2 {
		return nil
	}
	trigger := strings.ToLower(strings.TrimSpace(header))
	if !constants.CascadeTriggers[trigger] {
		return nil
	}

	log := s.log.With(slog.String("op", op), slog.String("doc", docID), slog.Int("row", row))
	res := &storage.CascadeResult{Triggered: true}

	fail := func(err error) *storage.CascadeResult {
		log.Error("certification cascade failed", slog.String("error", err.Error()))
		res.Error = err.Error()
		return res
	}

	sh, err := s.worksheet(ctx, docID, sheet)
	if err != nil {
		return fail(err)
	}
	headers, err := s.store.ReadRow(ctx, sh, 1)
	if err != nil {
		return fail(err)
	}
	values, err := s.store.ReadRow(ctx, sh, row)
	if err != nil {
		return fail(err)
	}

	index := make(map[string]int, len(headers))
	for i, h := range headers {
		name := strings.ToLower(strings.TrimSpace(h))
		if _, ok := index[name]; !ok && name != "" {
			index[name] = i
		}
	}
	get := func(name string) string {
		i, ok := index[strings.ToLower(name)]
		if !ok || i >= len(values) {
			return ""
		}
		return strings.TrimSpace(values[i])
	}

	d := deriveCertification(certFields{
		NameRU:   get(constants.CertNameRU),
		NameEN:   get(constants.CertNameEN),
		Volume:   get(constants.CertVolume),
		TNVED:    get(constants.CertTNVED),
		VolumeEN: get(constants.CertVolumeEN),
	}, trigger == strings.ToLower(constants.CertVolume))

	var updates []storage.CellUpdate
	set := func(name, value string) {
		i, ok := index[strings.ToLower(name)]
		if !ok {
			return
		}
		if get(name) == strings.TrimSpace(value) {
			return
		}
		updates = append(updates, storage.CellUpdate{Row: row, Col: i + 1, Value: value})
		res.Updated = append(res.Updated, name)
	}

	if d.writeDSName {
		set(constants.CertDSName, d.DSName)
	}
	if d.writeVolumeEN {
		set(constants.CertVolumeEN, d.VolumeEN)
	}
	set(constants.CertInvoiceRU, d.InvoiceRU)
	set(constants.CertInvoiceEN, d.InvoiceEN)

	if len(updates) == 0 {
		return res
	}
	if err := s.store.WriteCells(ctx, sh, updates); err != nil {
		res.Updated = nil
		return fail(err)
	}

	log.Info("certification cascade applied", slog.Any("fields", res.Updated))
	return res
}
