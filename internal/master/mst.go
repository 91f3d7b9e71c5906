package master

import (
	"archive/zip"
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"

	"github.com/kyh-dev/stockscope/pkg/httputil"
	"github.com/kyh-dev/stockscope/pkg/logger"
)

// Master file row layout. Each row is part1 (단축코드 9, 표준코드 12, 한글명
// 가변) followed by a fixed-width part2 tail whose length depends on the
// market. Only a handful of part2 columns are read.
const (
	shortCodeWidth    = 9
	standardCodeWidth = 12

	kospiTailLen  = 228
	kosdaqTailLen = 222

	// part2 offsets (both markets put the sector code right after the
	// group and size codes)
	sectorCodeOffset = 3
	sectorCodeWidth  = 4

	kospiBasePriceOffset  = 41
	kosdaqBasePriceOffset = 36
	basePriceWidth        = 9
)

// mstParser downloads and parses one market's .mst file.
type mstParser struct {
	httpClient *httputil.Client
	log        *logger.Logger
}

// parseMarket downloads the zipped master file and parses it into entries.
func (p *mstParser) parseMarket(ctx context.Context, url, market string) ([]Entry, error) {
	resp, err := p.httpClient.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("download %s master: %w", market, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("download %s master: status %d", market, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s master: %w", market, err)
	}

	mst, err := extractMst(raw)
	if err != nil {
		return nil, fmt.Errorf("extract %s master: %w", market, err)
	}

	entries, err := parseMst(mst, market)
	if err != nil {
		return nil, fmt.Errorf("parse %s master: %w", market, err)
	}

	p.log.WithFields(map[string]interface{}{
		"market": market,
		"count":  len(entries),
	}).Info("Parsed master file")

	return entries, nil
}

// extractMst pulls the first .mst member out of the zip archive.
func extractMst(zipData []byte) ([]byte, error) {
	reader, err := zip.NewReader(bytes.NewReader(zipData), int64(len(zipData)))
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}

	for _, file := range reader.File {
		if !strings.HasSuffix(strings.ToLower(file.Name), ".mst") {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", file.Name, err)
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}

	return nil, fmt.Errorf("no .mst member in archive")
}

// parseMst decodes cp949 rows and splits each into part1/part2.
func parseMst(data []byte, market string) ([]Entry, error) {
	suffix := ".KS"
	tailLen := kospiTailLen
	basePriceOffset := kospiBasePriceOffset
	if market == "KOSDAQ" {
		suffix = ".KQ"
		tailLen = kosdaqTailLen
		basePriceOffset = kosdaqBasePriceOffset
	}

	decoder := korean.EUCKR.NewDecoder()
	scanner := bufio.NewScanner(transform.NewReader(bytes.NewReader(data), decoder))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var entries []Entry
	for scanner.Scan() {
		line := scanner.Text()
		runes := []rune(line)
		if len(runes) <= tailLen+shortCodeWidth+standardCodeWidth {
			continue
		}

		part1 := runes[:len(runes)-tailLen]
		part2 := string(runes[len(runes)-tailLen:])

		shortCode := strings.TrimSpace(string(part1[:shortCodeWidth]))
		name := strings.TrimSpace(string(part1[shortCodeWidth+standardCodeWidth:]))
		if len(shortCode) < 6 || name == "" {
			continue
		}

		stockCode := shortCode[:6]
		if !isDigits(stockCode) {
			continue
		}

		entries = append(entries, Entry{
			Ticker:     stockCode + suffix,
			StockCode:  stockCode,
			Name:       name,
			Market:     market,
			SectorCode: fixedField(part2, sectorCodeOffset, sectorCodeWidth),
			BasePrice:  fixedNumber(part2, basePriceOffset, basePriceWidth),
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan rows: %w", err)
	}
	return entries, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

func fixedField(s string, offset, width int) string {
	if offset+width > len(s) {
		return ""
	}
	return strings.TrimSpace(s[offset : offset+width])
}

func fixedNumber(s string, offset, width int) float64 {
	field := fixedField(s, offset, width)
	if field == "" {
		return 0
	}
	v, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return 0
	}
	return v
}
