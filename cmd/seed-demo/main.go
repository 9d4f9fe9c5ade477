package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/aissms/reeval-backend/internal/config"
	"github.com/aissms/reeval-backend/internal/database"
	"github.com/aissms/reeval-backend/internal/logger"
	"github.com/aissms/reeval-backend/internal/repository"
	"github.com/aissms/reeval-backend/internal/service"
	"github.com/jackc/pgx/v5"
)

type demoSubject struct {
	code  string
	name  string
	marks float64
}

var subjects = []demoSubject{
	{"CS301", "Data Structures", 42},
	{"CS302", "Computer Networks", 31},
	{"CS303", "Database Management Systems", 58},
	{"MA201", "Engineering Mathematics III", 34},
}

func main() {
	var college string
	var students int
	var withRequests bool
	flag.StringVar(&college, "college", "AISSMS College of Engineering", "College to seed")
	flag.IntVar(&students, "students", 40, "Number of demo students")
	flag.BoolVar(&withRequests, "requests", true, "File one demo request per student")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	fmt.Printf("=== Seeding %d students for %s ===\n", students, college)

	err = pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for i := 1; i <= students; i++ {
			regNo := fmt.Sprintf("S%04d", i)
			year := i%4 + 1
			batch.Queue(
				`INSERT INTO student_details (reg_no, college_name, sppu_reg_no, first_name, last_name, year_of_study, semester)
				 VALUES ($1, $2, $3, $4, $5, $6, $7)
				 ON CONFLICT (reg_no, college_name) DO NOTHING`,
				regNo, college, "SPPU-"+regNo, "Student", fmt.Sprintf("%03d", i), year, i%2+1,
			)
			for j, sub := range subjects {
				batch.Queue(
					`INSERT INTO student_subjects (student_reg_no, student_college, subject_code, subject_name, current_marks, answer_sheet_url)
					 VALUES ($1, $2, $3, $4, $5, $6)
					 ON CONFLICT (student_reg_no, student_college, subject_code) DO NOTHING`,
					regNo, college, sub.code, sub.name, sub.marks+float64((i+j)%7),
					fmt.Sprintf("answer-sheets/%s/%s.pdf", regNo, sub.code),
				)
			}
		}

		for i := 1; i <= 3; i++ {
			regNo := fmt.Sprintf("E%03d", i)
			batch.Queue(
				`INSERT INTO evaluator_details (reg_no, college_name, sppu_reg_no, first_name, last_name)
				 VALUES ($1, $2, $3, $4, $5)
				 ON CONFLICT (reg_no) DO NOTHING`,
				regNo, college, "SPPU-"+regNo, "Evaluator", fmt.Sprintf("%02d", i),
			)
			for _, sub := range subjects {
				batch.Queue(
					`INSERT INTO evaluator_subjects (evaluator_reg_no, evaluator_college, subject_code, subject_name)
					 VALUES ($1, $2, $3, $4)
					 ON CONFLICT (evaluator_reg_no, subject_code) DO NOTHING`,
					regNo, college, sub.code, sub.name,
				)
			}
		}

		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to seed demo data")
	}
	fmt.Println("Students, subjects and evaluators seeded")

	if !withRequests {
		return
	}

	requests := service.NewRequestService(repository.NewPgStore(pool), service.NopEventPublisher{}, cfg.StoreTimeout, log)
	filed := 0
	for i := 1; i <= students; i++ {
		sub := subjects[i%len(subjects)]
		id := service.Identity{Role: service.RoleStudent, RegNo: fmt.Sprintf("S%04d", i), College: college}
		_, err := requests.Create(ctx, id, service.NewRequestInput{
			SubjectCode: sub.code,
			Reason:      "Requesting re-evaluation of " + sub.name,
		})
		if err != nil {
			if errors.Is(err, service.ErrSubjectNotFound) {
				continue
			}
			log.Fatal().Err(err).Str("reg_no", id.RegNo).Msg("Failed to file demo request")
		}
		filed++
	}
	fmt.Printf("Filed %d demo requests\n", filed)
}
