package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/fatih/color"
	"github.com/sourcegraph/conc/pool"
	"gopkg.in/yaml.v3"
)

var (
	app    = kingpin.New("dispatchctl", "Operator CLI for the task dispatch service")
	server = app.Flag("server", "Base URL of the dispatch server").Default("http://localhost:3200").Envar("TASKDISPATCH_SERVER").String()
	apiKey = app.Flag("api-key", "API key").Envar("TASKDISPATCH_API_KEY").Required().String()

	// Task commands
	taskCmd = app.Command("task", "Task management commands")

	taskCreateCmd  = taskCmd.Command("create", "Create a task from a YAML or JSON file")
	taskCreateFile = taskCreateCmd.Arg("file", "Task definition file").Required().ExistingFile()

	taskGetCmd = taskCmd.Command("get", "Show a task")
	taskGetID  = taskGetCmd.Arg("id", "Task ID").Required().String()

	taskListCmd   = taskCmd.Command("list", "List tasks")
	taskListType  = taskListCmd.Flag("type", "Filter by task type").String()
	taskListGroup = taskListCmd.Flag("task-group", "Filter by task group").String()

	taskDeleteCmd = taskCmd.Command("delete", "Delete one or more tasks")
	taskDeleteIDs = taskDeleteCmd.Arg("id", "Task IDs").Required().Strings()

	// Task group commands
	groupCmd = app.Command("group", "Task group management commands")

	groupCreateCmd  = groupCmd.Command("create", "Create a task group from a YAML or JSON file")
	groupCreateFile = groupCreateCmd.Arg("file", "Task group definition file").Required().ExistingFile()

	groupGetCmd  = groupCmd.Command("get", "Show a task group")
	groupGetName = groupGetCmd.Arg("name", "Task group name").Required().String()

	groupDeleteCmd   = groupCmd.Command("delete", "Delete one or more task groups")
	groupDeleteNames = groupDeleteCmd.Arg("name", "Task group names").Required().Strings()

	// Submission commands
	submitCmd  = app.Command("submit", "Submit a solution for grading")
	submitFile = submitCmd.Arg("file", "Submission file (JSON)").Required().ExistingFile()

	gradingCmd = app.Command("grading", "Fetch the grading of a submission")
	gradingID  = gradingCmd.Arg("id", "Submission ID").Required().String()
)

const deleteConcurrency = 4

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))
	c := &client{base: strings.TrimSuffix(*server, "/"), apiKey: *apiKey}

	var err error
	switch command {
	case taskCreateCmd.FullCommand():
		err = createFromFile(c, "/api/tasks", *taskCreateFile)
	case taskGetCmd.FullCommand():
		err = c.getJSON("/api/tasks/" + *taskGetID)
	case taskListCmd.FullCommand():
		err = listTasks(c, *taskListType, *taskListGroup)
	case taskDeleteCmd.FullCommand():
		err = deleteAll(c, "/api/tasks/", *taskDeleteIDs)
	case groupCreateCmd.FullCommand():
		err = createFromFile(c, "/api/taskgroups", *groupCreateFile)
	case groupGetCmd.FullCommand():
		err = c.getJSON("/api/taskgroups/" + *groupGetName)
	case groupDeleteCmd.FullCommand():
		err = deleteAll(c, "/api/taskgroups/", *groupDeleteNames)
	case submitCmd.FullCommand():
		err = submit(c, *submitFile)
	case gradingCmd.FullCommand():
		err = c.getJSON("/api/submissions/" + *gradingID + "/grading")
	}
	if err != nil {
		color.Red("error: %v", err)
		os.Exit(1)
	}
}

type client struct {
	base   string
	apiKey string
}

func (c *client) do(method, path string, body []byte) ([]byte, error) {
	req, err := http.NewRequest(method, c.base+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-Key", c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	httpClient := &http.Client{Timeout: 60 * time.Second}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(respBody)))
	}
	return respBody, nil
}

func (c *client) getJSON(path string) error {
	body, err := c.do(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	printJSON(body)
	return nil
}

func createFromFile(c *client, path, file string) error {
	payload, err := readPayload(file)
	if err != nil {
		return err
	}
	body, err := c.do(http.MethodPost, path, payload)
	if err != nil {
		return err
	}
	color.Green("created")
	printJSON(body)
	return nil
}

func listTasks(c *client, taskType, taskGroup string) error {
	q := make([]string, 0, 2)
	if taskType != "" {
		q = append(q, "type="+taskType)
	}
	if taskGroup != "" {
		q = append(q, "taskGroup="+taskGroup)
	}
	path := "/api/tasks"
	if len(q) > 0 {
		path += "?" + strings.Join(q, "&")
	}
	return c.getJSON(path)
}

// deleteAll fans the deletes out with bounded concurrency and reports every
// failure instead of stopping at the first one.
func deleteAll(c *client, prefix string, ids []string) error {
	p := pool.New().WithMaxGoroutines(deleteConcurrency).WithErrors()
	for _, id := range ids {
		p.Go(func() error {
			if _, err := c.do(http.MethodDelete, prefix+id, nil); err != nil {
				color.Red("failed to delete %s", id)
				return fmt.Errorf("%s: %w", id, err)
			}
			color.Green("deleted %s", id)
			return nil
		})
	}
	return p.Wait()
}

func submit(c *client, file string) error {
	payload, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	body, err := c.do(http.MethodPost, "/api/submissions", payload)
	if err != nil {
		return err
	}
	printJSON(body)
	return nil
}

// readPayload loads a task or group definition; YAML files are converted to
// the JSON the API expects.
func readPayload(file string) ([]byte, error) {
	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	switch filepath.Ext(file) {
	case ".yaml", ".yml":
		var doc map[string]any
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", file, err)
		}
		return json.Marshal(doc)
	default:
		return raw, nil
	}
}

func printJSON(body []byte) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		fmt.Println(strings.TrimSpace(string(body)))
		return
	}
	fmt.Println(buf.String())
}
