package sxn

import (
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/NoamAriel/sxn/config"
)

// httpClient performs E-utilities requests; tests swap in a mock transport.
var httpClient = &http.Client{Timeout: 30 * time.Second}

const (
	esearchURL  = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esearch.fcgi"
	esummaryURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esummary.fcgi"
	efetchURL   = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/efetch.fcgi"

	// esearchPage is the retmax per ESearch page; NCBI caps retmax at
	// 100000 and 50000 stays clear of truncated responses
	esearchPage = 50000

	// summaryChunk and fetchChunk size the ESummary and EFetch batches
	summaryChunk = 150
	fetchChunk   = 150

	maxRetries = 3

	userAgent = "sxn-fetcher/1.0 (+https://github.com/NoamAriel/sxn)"
)

// UnknownType is the classification fallback for titles matching none of
// the expected protein types.
const UnknownType = "Unknown_type"

// docSummary is the slice of an ESummary DocSum we keep.
type docSummary struct {
	Accession string
	Title     string
	TaxID     string
}

// rankedName is one (rank, scientific name) step of a taxonomy lineage.
type rankedName struct {
	Rank string
	Name string
}

type eSearchResult struct {
	Count          int      `xml:"Count"`
	IDs            []string `xml:"IdList>Id"`
	PhraseNotFound string   `xml:"ErrorList>PhraseNotFound"`
}

type eSummaryResult struct {
	DocSums []struct {
		Items []struct {
			Name  string `xml:"Name,attr"`
			Value string `xml:",chardata"`
		} `xml:"Item"`
	} `xml:"DocSum"`
}

type taxaSet struct {
	Taxon []struct {
		ScientificName string `xml:"ScientificName"`
		Rank           string `xml:"Rank"`
		Lineage        []struct {
			ScientificName string `xml:"ScientificName"`
			Rank           string `xml:"Rank"`
		} `xml:"LineageEx>Taxon"`
	} `xml:"Taxon"`
}

// getWithRetry GETs an E-utilities endpoint, retrying 429s and 5xx
// responses with exponential backoff.
func getWithRetry(endpoint string, params url.Values) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(1<<uint(attempt-1)) * time.Second
			if delay > 8*time.Second {
				delay = 8 * time.Second
			}
			time.Sleep(delay)
		}

		req, err := http.NewRequest("GET", endpoint+"?"+params.Encode(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", userAgent)

		resp, err := httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("ncbi returned status %d", resp.StatusCode)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("ncbi returned status %d: %s", resp.StatusCode, body)
		}
		return body, nil
	}
	return nil, lastErr
}

// fetchIDs pages through ESearch until the full accession list for term
// is collected, or maxRecords (if > 0) is reached.
func fetchIDs(term, apiKey string, maxRecords int) ([]string, error) {
	var ids []string
	retstart := 0
	total := -1

	for {
		params := url.Values{
			"db":       {"protein"},
			"term":     {term},
			"retstart": {fmt.Sprint(retstart)},
			"retmax":   {fmt.Sprint(esearchPage)},
			"retmode":  {"xml"},
			"idtype":   {"acc"},
		}
		if apiKey != "" {
			params.Set("api_key", apiKey)
		}

		body, err := getWithRetry(esearchURL, params)
		if err != nil {
			return nil, err
		}
		var result eSearchResult
		if err := xml.Unmarshal(body, &result); err != nil {
			return nil, fmt.Errorf("esearch response: %w", err)
		}
		if strings.TrimSpace(result.PhraseNotFound) != "" {
			break
		}
		if total < 0 {
			total = result.Count
			stderr.Printf("[INFO] ESearch found %d IDs for %q", total, term)
		}

		for _, id := range result.IDs {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
		retstart += esearchPage

		if maxRecords > 0 && len(ids) >= maxRecords {
			ids = ids[:maxRecords]
			break
		}
		if retstart >= total {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}
	return ids, nil
}

// fetchSummaries pulls DocSums for ids in chunks. A chunk that keeps
// failing is logged and dropped rather than aborting the crawl.
func fetchSummaries(ids []string, apiKey string) ([]docSummary, error) {
	var out []docSummary
	for _, chunk := range chunked(ids, summaryChunk) {
		params := url.Values{
			"db":      {"protein"},
			"id":      {strings.Join(chunk, ",")},
			"retmode": {"xml"},
		}
		if apiKey != "" {
			params.Set("api_key", apiKey)
		}

		body, err := getWithRetry(esummaryURL, params)
		if err != nil {
			stderr.Printf("[WARN] ESummary failed for chunk of %d: %v", len(chunk), err)
			continue
		}
		var result eSummaryResult
		if err := xml.Unmarshal(body, &result); err != nil {
			stderr.Printf("[WARN] ESummary parse failed for chunk of %d: %v", len(chunk), err)
			continue
		}

		for _, docsum := range result.DocSums {
			var ds docSummary
			for _, item := range docsum.Items {
				v := strings.TrimSpace(item.Value)
				switch item.Name {
				case "Title":
					ds.Title = v
				case "AccessionVersion", "Caption":
					if ds.Accession == "" {
						ds.Accession = v
					}
				case "TaxId":
					ds.TaxID = v
				}
			}
			if ds.Accession != "" && ds.Title != "" {
				out = append(out, ds)
			}
		}
	}
	return out, nil
}

// genPept is the slice of a GenPept flatfile we parse out.
type genPept struct {
	Organism string
	Taxonomy []string
	Sequence string
}

var nonResidue = regexp.MustCompile(`[^A-Za-z*]`)

// parseGenPept extracts the ORGANISM block and ORIGIN sequence from one
// GenPept flatfile record.
func parseGenPept(text string) genPept {
	gp := genPept{Organism: "Unknown organism"}
	lines := strings.Split(text, "\n")
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if strings.HasPrefix(line, "  ORGANISM") {
			if name := strings.TrimSpace(line[len("  ORGANISM"):]); name != "" {
				gp.Organism = name
			}
			i++
			var taxLines []string
			for i < len(lines) && strings.HasPrefix(lines[i], strings.Repeat(" ", 12)) {
				taxLines = append(taxLines, strings.TrimSpace(lines[i]))
				i++
			}
			for _, part := range strings.Split(strings.Join(taxLines, " "), ";") {
				if part = strings.Trim(strings.TrimSpace(part), "."); part != "" {
					gp.Taxonomy = append(gp.Taxonomy, part)
				}
			}
			i--
		} else if strings.HasPrefix(line, "ORIGIN") {
			i++
			var parts []string
			for i < len(lines) && !strings.HasPrefix(lines[i], "//") {
				parts = append(parts, nonResidue.ReplaceAllString(lines[i], ""))
				i++
			}
			gp.Sequence = strings.ToUpper(strings.Join(parts, ""))
			break
		}
	}
	return gp
}

// fetchGenPeptBatch EFetches several GenPept records in one call and
// maps accession to the parsed record. NCBI returns records in request
// order, so the zip with accessions mirrors the request list.
func fetchGenPeptBatch(accessions []string, apiKey string) (map[string]genPept, error) {
	if len(accessions) == 0 {
		return map[string]genPept{}, nil
	}

	params := url.Values{
		"db":      {"protein"},
		"id":      {strings.Join(accessions, ",")},
		"rettype": {"gp"},
		"retmode": {"text"},
	}
	if apiKey != "" {
		params.Set("api_key", apiKey)
	}

	body, err := getWithRetry(efetchURL, params)
	if err != nil {
		return nil, err
	}

	text := strings.TrimSpace(strings.ReplaceAll(string(body), "\r\n", "\n"))
	var raw []string
	for _, rec := range strings.Split(text, "\n//") {
		if strings.TrimSpace(rec) != "" {
			raw = append(raw, rec)
		}
	}
	if len(raw) != len(accessions) {
		stderr.Printf("[WARN] expected %d GenPept records, got %d", len(accessions), len(raw))
	}

	out := make(map[string]genPept, len(raw))
	for i, rec := range raw {
		if i >= len(accessions) {
			break
		}
		out[accessions[i]] = parseGenPept(rec)
	}
	return out, nil
}

// fetchLineage pulls the ranked lineage for a TaxID from the NCBI
// Taxonomy database, ending with the queried taxon itself.
func fetchLineage(taxid, apiKey string) ([]rankedName, error) {
	params := url.Values{
		"db":      {"taxonomy"},
		"id":      {taxid},
		"retmode": {"xml"},
	}
	if apiKey != "" {
		params.Set("api_key", apiKey)
	}

	body, err := getWithRetry(efetchURL, params)
	if err != nil {
		return nil, err
	}
	var set taxaSet
	if err := xml.Unmarshal(body, &set); err != nil {
		return nil, fmt.Errorf("taxonomy response: %w", err)
	}
	if len(set.Taxon) == 0 {
		return nil, nil
	}

	var lineage []rankedName
	taxon := set.Taxon[0]
	for _, step := range taxon.Lineage {
		rank := strings.TrimSpace(step.Rank)
		name := strings.TrimSpace(step.ScientificName)
		if rank != "" && name != "" {
			lineage = append(lineage, rankedName{Rank: rank, Name: name})
		}
	}
	if rank, name := strings.TrimSpace(taxon.Rank), strings.TrimSpace(taxon.ScientificName); rank != "" && name != "" {
		lineage = append(lineage, rankedName{Rank: rank, Name: name})
	}
	return lineage, nil
}

// classifyType matches a record title against the expected types in
// priority order. The settings are a slice, not a map, so classification
// order is stable.
func classifyType(title string, types []config.TypeSetting) string {
	tl := strings.ToLower(title)
	for _, t := range types {
		aliases := t.Aliases
		if len(aliases) == 0 {
			aliases = []string{t.Canonical}
		}
		for _, alias := range aliases {
			if strings.Contains(tl, strings.ToLower(alias)) {
				return t.Canonical
			}
		}
	}
	return UnknownType
}

// chunked splits items into slices of at most size.
func chunked(items []string, size int) [][]string {
	var chunks [][]string
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[start:end])
	}
	return chunks
}
