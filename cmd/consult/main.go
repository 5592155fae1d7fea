package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"telemed-ai/internal/config"
	"telemed-ai/internal/consultation"
	"telemed-ai/internal/history"
)

// consult is a terminal front end for one consultation session. It reads the
// patient's history and stores records straight from Postgres, and asks the
// relay for advice over HTTP.
func main() {
	config.LoadEnv()

	patientID, err := uuid.Parse(os.Getenv("PATIENT_ID"))
	if err != nil {
		log.Fatalf("PATIENT_ID must be a UUID: %v", err)
	}
	lang := consultation.Language(strings.ToLower(config.Get("LANGUAGE", string(consultation.English))))
	if !lang.Valid() {
		log.Fatalf("LANGUAGE must be english or hindi, got %q", lang)
	}

	relay := consultation.NewRelayClient(
		config.Get("RELAY_URL", "http://localhost:8080/functions/v1/ai-consultation"),
		os.Getenv("RELAY_TOKEN"),
		config.GetDuration("RELAY_TIMEOUT", 45*time.Second),
	)

	var hist consultation.HistorySource
	var store consultation.RecordSaver
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		db, err := sql.Open("postgres", dsn)
		if err != nil {
			log.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()
		hist = history.NewRepository(db)
		store = consultation.NewRepository(db)
	} else {
		log.Println("Warning: DATABASE_URL not set; history will not be sent and consultations will not be saved.")
	}

	session := consultation.NewSession(consultation.SessionContext{PatientID: patientID, Language: lang}, relay, hist, store)
	defer session.Wait()

	fmt.Println("⚠️ " + consultation.Disclaimer(lang))
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		if line == "/quit" {
			break
		}

		reply, err := session.Submit(context.Background(), line)
		if err != nil {
			var notice *consultation.Notice
			if errors.As(err, &notice) {
				fmt.Printf("[%s] %s\n", notice.Kind, notice.Error())
				continue
			}
			fmt.Printf("error: %v\n", err)
			continue
		}
		fmt.Println(reply)
		fmt.Println()
	}
}
