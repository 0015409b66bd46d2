// Command e2e drives a running sql-example server through a real browser and
// checks the table endpoints end to end.
package main

import (
	"flag"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
)

type E2EConfig struct {
	Port        string
	BaseURL     string
	Headless    bool
	SlowMo      time.Duration
	WaitTimeout time.Duration
}

var globalConfig *E2EConfig

func parseFlags() *E2EConfig {
	if globalConfig != nil {
		return globalConfig
	}

	port := flag.String("port", "8080", "Port number of the sql-example server")
	headless := flag.Bool("headless", true, "Run browser in headless mode")
	slowMo := flag.Duration("slow-mo", 100*time.Millisecond, "Slow down operations by specified duration")
	timeout := flag.Duration("timeout", time.Second, "Default timeout for page operations")
	flag.Parse()

	globalConfig = &E2EConfig{
		Port:        *port,
		BaseURL:     fmt.Sprintf("http://localhost:%s", *port),
		Headless:    *headless,
		SlowMo:      *slowMo,
		WaitTimeout: *timeout,
	}

	return globalConfig
}

type TestResult struct {
	Name   string
	Passed bool
	Error  string
}

type TestRunner struct {
	config     *E2EConfig
	page       playwright.Page
	results    []TestResult
	subtestErr error
}

func NewTestRunner(config *E2EConfig, page playwright.Page) *TestRunner {
	return &TestRunner{
		config:  config,
		page:    page,
		results: make([]TestResult, 0),
	}
}

func (tr *TestRunner) Run(name string, testFunc func(*TestRunner) error) {
	fmt.Printf("Running test: %s\n", name)

	result := TestResult{Name: name}
	tr.subtestErr = nil

	if err := testFunc(tr); err != nil {
		result.Error = err.Error()
		fmt.Printf("FAIL: %s - %v\n", name, err)
	} else if tr.subtestErr != nil {
		result.Error = fmt.Sprintf("subtests failed: %v", tr.subtestErr)
		fmt.Printf("FAIL: %s - %v\n", name, tr.subtestErr)
	} else {
		result.Passed = true
		fmt.Printf("PASS: %s\n", name)
	}

	tr.results = append(tr.results, result)
}

func (tr *TestRunner) RunSubtest(parentName, name string, testFunc func(*TestRunner) error) {
	fmt.Printf("  Running subtest: %s/%s\n", parentName, name)

	if err := testFunc(tr); err != nil {
		// The first failing subtest fails the parent
		if tr.subtestErr == nil {
			tr.subtestErr = fmt.Errorf("%s/%s: %v", parentName, name, err)
		}
		fmt.Printf("  FAIL: %s/%s - %v\n", parentName, name, err)
		return
	}

	fmt.Printf("  PASS: %s/%s\n", parentName, name)
}

func (tr *TestRunner) AllPassed() bool {
	for _, result := range tr.results {
		if !result.Passed {
			return false
		}
	}
	return true
}

// tableResponse mirrors the JSON envelope of a table request
type tableResponse struct {
	Draw            int              `json:"draw"`
	RecordsTotal    int              `json:"recordsTotal"`
	RecordsFiltered int              `json:"recordsFiltered"`
	Data            []map[string]any `json:"data"`
	Error           string           `json:"error"`
}

// getTable requests the employees table with params through the page's
// request context and decodes the JSON response
func (tr *TestRunner) getTable(params url.Values) (int, *tableResponse, error) {
	resp, err := tr.page.Request().Get(tr.config.BaseURL + "/tables/employees?" + params.Encode())
	if err != nil {
		return 0, nil, err
	}
	var out tableResponse
	if err := resp.JSON(&out); err != nil {
		return resp.Status(), nil, fmt.Errorf("invalid JSON: %v", err)
	}
	return resp.Status(), &out, nil
}

func setupPlaywright() (*playwright.Playwright, playwright.Browser, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, nil, fmt.Errorf("could not start playwright: %v", err)
	}

	config := parseFlags()
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(config.Headless),
		SlowMo:   playwright.Float(float64(config.SlowMo.Milliseconds())),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("could not launch browser: %v", err)
	}

	return pw, browser, nil
}

func testIndex(tr *TestRunner) error {
	resp, err := tr.page.Goto(tr.config.BaseURL + "/tables/")
	if err != nil {
		return fmt.Errorf("failed to navigate to index: %v", err)
	}
	if resp.Status() != 200 {
		return fmt.Errorf("expected status 200, got %d", resp.Status())
	}
	content, err := tr.page.Content()
	if err != nil {
		return err
	}
	for _, name := range []string{"departments", "employees"} {
		if !strings.Contains(content, `"name":"`+name+`"`) {
			return fmt.Errorf("index does not list %s", name)
		}
	}
	return nil
}

func testFirstPage(tr *TestRunner) error {
	_, err := tr.page.Goto(tr.config.BaseURL + "/tables/employees?format=html&length=10")
	if err != nil {
		return fmt.Errorf("failed to navigate to employees: %v", err)
	}

	tr.RunSubtest("FirstPage", "Header", func(tr *TestRunner) error {
		count, err := tr.page.Locator("table#employees thead th").Count()
		if err != nil {
			return err
		}
		if count != 6 {
			return fmt.Errorf("expected 6 header cells, got %d", count)
		}
		label, err := tr.page.Locator("table#employees thead th").First().TextContent()
		if err != nil {
			return err
		}
		if label != "Full Name" {
			return fmt.Errorf("expected first header 'Full Name', got %q", label)
		}
		return nil
	})

	tr.RunSubtest("FirstPage", "Rows", func(tr *TestRunner) error {
		count, err := tr.page.Locator("table#employees tbody tr:not(.load-more)").Count()
		if err != nil {
			return err
		}
		if count != 10 {
			return fmt.Errorf("expected 10 rows, got %d", count)
		}
		name, err := tr.page.Locator(`tbody tr td[data-column="name"]`).First().TextContent()
		if err != nil {
			return err
		}
		// Newest employee first by default
		if name != "User 01" {
			return fmt.Errorf("expected User 01 first, got %q", name)
		}
		return nil
	})

	tr.RunSubtest("FirstPage", "LoadMore", func(tr *TestRunner) error {
		href, err := tr.page.Locator("tr.load-more a").GetAttribute("href")
		if err != nil {
			return err
		}
		if !strings.Contains(href, "start=10") || !strings.Contains(href, "format=html") {
			return fmt.Errorf("unexpected load-more URL %q", href)
		}

		resp, err := tr.page.Request().Get(tr.config.BaseURL + href)
		if err != nil {
			return err
		}
		body, err := resp.Text()
		if err != nil {
			return err
		}
		if strings.Contains(body, "<table") {
			return fmt.Errorf("expected bare rows on later pages")
		}
		if rows := strings.Count(body, "<tr>"); rows != 10 {
			return fmt.Errorf("expected 10 rows on second page, got %d", rows)
		}
		return nil
	})
	return nil
}

func testColumnSearch(tr *TestRunner) error {
	status, resp, err := tr.getTable(url.Values{
		"draw":                      {"3"},
		"columns[0][data]":          {"name"},
		"columns[0][search][value]": {"^User 0[1-5]$"},
		"length":                    {"-1"},
	})
	if err != nil {
		return err
	}
	if status != 200 {
		return fmt.Errorf("expected status 200, got %d", status)
	}
	if resp.Draw != 3 {
		return fmt.Errorf("expected draw 3, got %d", resp.Draw)
	}
	if resp.RecordsTotal != 40 || resp.RecordsFiltered != 5 {
		return fmt.Errorf("expected 40 total and 5 filtered, got %d and %d", resp.RecordsTotal, resp.RecordsFiltered)
	}
	return nil
}

func testOrdering(tr *TestRunner) error {
	_, resp, err := tr.getTable(url.Values{
		"columns[0][data]": {"name"},
		"order[0][column]": {"0"},
		"order[0][dir]":    {"asc"},
		"length":           {"3"},
	})
	if err != nil {
		return err
	}
	if len(resp.Data) != 3 {
		return fmt.Errorf("expected 3 rows, got %d", len(resp.Data))
	}
	for i, want := range []string{"User 01", "User 02", "User 03"} {
		if resp.Data[i]["name"] != want {
			return fmt.Errorf("row %d: expected %s, got %v", i, want, resp.Data[i]["name"])
		}
	}
	return nil
}

func testInvalidPattern(tr *TestRunner) error {
	status, resp, err := tr.getTable(url.Values{
		"columns[0][data]":          {"name"},
		"columns[0][search][value]": {"(unclosed"},
	})
	if err != nil {
		return err
	}
	if status != 400 {
		return fmt.Errorf("expected status 400, got %d", status)
	}
	if resp.Error == "" {
		return fmt.Errorf("expected an error message")
	}
	return nil
}

func runE2ETests() error {
	config := parseFlags()
	fmt.Printf("Starting E2E tests against %s\n", config.BaseURL)

	pw, browser, err := setupPlaywright()
	if err != nil {
		return fmt.Errorf("failed to setup Playwright: %v", err)
	}
	defer pw.Stop()
	defer browser.Close()

	browserContext, err := browser.NewContext()
	if err != nil {
		return fmt.Errorf("failed to create browser context: %v", err)
	}
	defer browserContext.Close()

	page, err := browserContext.NewPage()
	if err != nil {
		return fmt.Errorf("failed to create new page: %v", err)
	}
	page.SetDefaultTimeout(float64(config.WaitTimeout.Milliseconds()))

	testRunner := NewTestRunner(config, page)
	testRunner.Run("Index", testIndex)
	testRunner.Run("FirstPage", testFirstPage)
	testRunner.Run("ColumnSearch", testColumnSearch)
	testRunner.Run("Ordering", testOrdering)
	testRunner.Run("InvalidPattern", testInvalidPattern)

	fmt.Printf("\nTest Summary:\n")
	passed := 0
	for _, result := range testRunner.results {
		if result.Passed {
			passed++
			fmt.Printf("PASS %s\n", result.Name)
		} else {
			fmt.Printf("FAIL %s - %s\n", result.Name, result.Error)
		}
	}
	fmt.Printf("\nResults: %d/%d tests passed\n", passed, len(testRunner.results))

	if !testRunner.AllPassed() {
		return fmt.Errorf("some tests failed")
	}
	return nil
}

func main() {
	if err := runE2ETests(); err != nil {
		log.Fatal(err)
	}
	fmt.Println("All E2E tests passed!")
}
