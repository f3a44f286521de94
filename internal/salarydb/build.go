package salarydb

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spigell/linkedintel/internal/salary"
	"github.com/spigell/linkedintel/internal/title"
)

// SourcePattern matches the CSV files picked up from a sources directory.
const SourcePattern = "*-salaries.csv"

const (
	defaultCountry         = "IN"
	defaultExperienceLevel = "mid"
	defaultCurrency        = "INR"
	defaultSource          = "public"
)

// Report summarizes a build.
type Report struct {
	Files            []string
	Entries          int
	ValidationErrors int
	Duplicates       int
	ByCountry        map[string]int
	BySource         map[string]int
	UniqueTitles     int
	UniqueCompanies  int
	Fallback         int
}

// BuildDir reads every source CSV of dir in name order and returns the dataset, a
// representative fallback subset and a report. Rows failing validation are kept
// and counted so the caller decides whether to publish.
func BuildDir(dir string, titles *title.Normalizer) (*Dataset, []salary.Entry, *Report, error) {
	files, err := filepath.Glob(filepath.Join(dir, SourcePattern))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("listing sources: %w", err)
	}
	if len(files) == 0 {
		return nil, nil, nil, fmt.Errorf("no %s files found in %q", SourcePattern, dir)
	}
	sort.Strings(files)

	var entries []salary.Entry
	for _, path := range files {
		rows, err := readCSVFile(path, titles)
		if err != nil {
			return nil, nil, nil, err
		}
		entries = append(entries, rows...)
	}

	version, err := VersionOf(entries)
	if err != nil {
		return nil, nil, nil, err
	}

	ds := &Dataset{Version: version, Entries: entries}
	fallback := Representative(entries)

	report := Summarize(entries)
	report.Files = make([]string, 0, len(files))
	for _, path := range files {
		report.Files = append(report.Files, filepath.Base(path))
	}
	report.Fallback = len(fallback)
	if err := Validate(entries); err != nil {
		report.ValidationErrors = countJoined(err)
	}

	return ds, fallback, report, nil
}

func readCSVFile(path string, titles *title.Normalizer) ([]salary.Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %q: %w", path, err)
	}
	defer f.Close()

	rows, err := ReadCSV(f, titles)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}
	return rows, nil
}

// ReadCSV parses salary rows with a header line. Missing country, experience level,
// currency and source fall back to IN, mid, INR and public.
func ReadCSV(r io.Reader, titles *title.Normalizer) ([]salary.Entry, error) {
	if titles == nil {
		titles = title.NewNormalizer(nil)
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	if _, ok := columns["title"]; !ok {
		return nil, errors.New("header has no title column")
	}

	var entries []salary.Entry
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		get := func(name string) string {
			if i, ok := columns[name]; ok && i < len(record) {
				return strings.TrimSpace(record[i])
			}
			return ""
		}

		if get("title") == "" {
			continue
		}

		entries = append(entries, salary.Entry{
			Title:           get("title"),
			TitleNormalized: titles.Normalize(get("title")),
			Company:         get("company"),
			City:            strings.ToLower(get("city")),
			State:           strings.ToLower(get("state")),
			Country:         orDefault(get("country"), defaultCountry),
			ExperienceLevel: orDefault(get("experienceLevel"), defaultExperienceLevel),
			SalaryMin:       atoi(get("salaryMin")),
			SalaryMax:       atoi(get("salaryMax")),
			SalaryMedian:    atoi(get("salaryMedian")),
			Currency:        orDefault(get("currency"), defaultCurrency),
			Source:          orDefault(get("source"), defaultSource),
		})
	}

	return entries, nil
}

// Duplicates counts entries sharing title, company, city and experience level
// with an earlier entry.
func Duplicates(entries []salary.Entry) int {
	seen := make(map[string]struct{}, len(entries))
	duplicates := 0
	for _, e := range entries {
		key := strings.Join([]string{e.TitleNormalized, strings.ToLower(e.Company), e.City, e.ExperienceLevel}, "|")
		if _, ok := seen[key]; ok {
			duplicates++
			continue
		}
		seen[key] = struct{}{}
	}
	return duplicates
}

// Representative picks one entry per normalized title and country, preferring
// market entries over company specific ones. Order follows first appearance.
func Representative(entries []salary.Entry) []salary.Entry {
	index := make(map[string]int)
	var picked []salary.Entry

	for _, e := range entries {
		key := e.TitleNormalized + "|" + e.Country
		i, ok := index[key]
		if !ok {
			index[key] = len(picked)
			picked = append(picked, e)
			continue
		}
		if e.Company == "" && picked[i].Company != "" {
			picked[i] = e
		}
	}

	return picked
}

// Summarize collects build statistics for the entries.
func Summarize(entries []salary.Entry) *Report {
	report := &Report{
		Entries:    len(entries),
		Duplicates: Duplicates(entries),
		ByCountry:  make(map[string]int),
		BySource:   make(map[string]int),
	}

	titles := make(map[string]struct{})
	companies := make(map[string]struct{})
	for _, e := range entries {
		report.ByCountry[e.Country]++
		report.BySource[e.Source]++
		titles[e.TitleNormalized] = struct{}{}
		if e.Company != "" {
			companies[e.Company] = struct{}{}
		}
	}
	report.UniqueTitles = len(titles)
	report.UniqueCompanies = len(companies)

	return report
}

func countJoined(err error) int {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return len(joined.Unwrap())
	}
	return 1
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func atoi(value string) int {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return n
}
