package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/joho/godotenv"

	"kgeyst.com/viscore/pkg/common"
	"kgeyst.com/viscore/pkg/viscore/api"
	"kgeyst.com/viscore/pkg/viscore/domain"
)

// An interactive console for driving the test bench without the web UI: add test cases by URL,
// run them, inspect history.
func main() {
	err := mainImpl()
	if err != nil {
		panic(err)
	}
}

func mainImpl() error {
	_ = godotenv.Load()
	config, err := common.LoadConfig("config.yaml")
	if err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		config = common.NewConfigFromMap(nil)
	}
	viscore := api.NewAPI(config)
	defer viscore.Stop()
	fmt.Printf("provider: %s, threshold: %.2f (type \"help\" for commands)\n", viscore.Provider(), viscore.Threshold())
	rl, err := readline.New("> ")
	if err != nil {
		return err
	}
	defer func() {
		_ = rl.Close()
	}()
	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}
		if err := runCommand(viscore, line); err != nil {
			fmt.Println(err)
		}
	}
	return nil
}

func runCommand(viscore api.API, line string) error {
	command, argument := splitCommand(line)
	switch command {
	case "help":
		printHelp()
	case "list":
		return printTestCases(viscore)
	case "add":
		imageURL, description := splitCommand(argument)
		testCase, err := viscore.AddTestCaseFromURL(imageURL, description)
		if err != nil {
			return err
		}
		fmt.Printf("added test case #%d\n", testCase.ID)
	case "import":
		testCases, err := viscore.ImportFromPage(argument)
		if err != nil {
			return err
		}
		fmt.Printf("imported %d test case(s)\n", len(testCases))
	case "delete":
		id, err := strconv.Atoi(argument)
		if err != nil {
			return fmt.Errorf("usage: delete <id>")
		}
		return viscore.DeleteTestCase(id)
	case "clear":
		return viscore.ClearTestCases()
	case "run":
		threshold := 0.0
		if argument != "" {
			var err error
			threshold, err = strconv.ParseFloat(argument, 64)
			if err != nil {
				return fmt.Errorf("usage: run [threshold]")
			}
		}
		result, err := viscore.RunTests(threshold)
		if err != nil {
			return err
		}
		printRunResult(result)
	case "history":
		names, err := viscore.ResultHistory()
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Println(name)
		}
	case "show":
		result, err := viscore.ResultByName(argument)
		if err != nil {
			return err
		}
		printRunResult(result)
	default:
		return fmt.Errorf("unknown command \"%s\", type \"help\" for commands", command)
	}
	return nil
}

func splitCommand(line string) (string, string) {
	parts := strings.SplitN(line, " ", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.TrimSpace(parts[1])
}

func printHelp() {
	fmt.Println("commands:")
	fmt.Println("  list                          show current test cases")
	fmt.Println("  add <image-url> <description> add a test case from an image URL")
	fmt.Println("  import <page-url>             add test cases from a page's images (alt text as description)")
	fmt.Println("  delete <id>                   delete a test case")
	fmt.Println("  clear                         delete all test cases")
	fmt.Println("  run [threshold]               run all test cases")
	fmt.Println("  history                       list stored run results")
	fmt.Println("  show <name>                   print a stored run result")
	fmt.Println("  exit")
}

func printTestCases(viscore api.API) error {
	testCases, err := viscore.TestCases()
	if err != nil {
		return err
	}
	for _, testCase := range testCases {
		fmt.Printf("#%d %s: %s\n", testCase.ID, testCase.ImagePath, testCase.ExpectedDescription)
	}
	fmt.Printf("%d test case(s)\n", len(testCases))
	return nil
}

func printRunResult(result *domain.TestRunResult) {
	fmt.Printf("total: %d, passed: %d, failed: %d, success rate: %.2f%%\n",
		result.TotalTests, result.Passed, result.Failed, result.SuccessRate)
	for _, testCase := range result.TestCases {
		status := "FAIL"
		if testCase.Passed {
			status = "PASS"
		}
		fmt.Printf("%s | #%d: %.2f\n", status, testCase.ID, testCase.SimilarityScore)
		fmt.Printf("  expected: %s\n", testCase.ExpectedDescription)
		fmt.Printf("  actual:   %s\n", testCase.ActualDescription)
	}
}
