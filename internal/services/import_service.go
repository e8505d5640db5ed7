package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/academic-records-service/internal/auth"
	"github.com/SAP-F-2025/academic-records-service/internal/events"
	"github.com/SAP-F-2025/academic-records-service/internal/models"
	"github.com/SAP-F-2025/academic-records-service/internal/repositories"
)

// Roster columns, in order. The first row is a header.
const (
	colName = iota
	colEmail
	colPassword
	colRole
)

// ImportUsers creates one user per spreadsheet row. Each row commits on its
// own; rows that fail are reported in the summary and do not stop the import.
func (s *identityService) ImportUsers(ctx context.Context, caller *auth.Principal, r io.Reader, classeID *uint) (*models.ImportSummary, error) {
	if err := authorize(caller, models.RoleAdmin); err != nil {
		return nil, err
	}

	if classeID != nil {
		if _, err := s.repo.Classe().GetByID(ctx, *classeID); err != nil {
			return nil, mapRepositoryError(err, ErrClasseNotFound, "get class")
		}
	}

	rows, err := readRoster(r)
	if err != nil {
		return nil, newServiceError(KindValidation, "Could not read the spreadsheet.", err)
	}
	s.logger.Info("Importing users", "rows", len(rows), "classe_id", classeID, "imported_by", caller.UserID)

	summary := &models.ImportSummary{}
	for i, row := range rows {
		rowNum := i + 2 // 1-based, after the header
		req := rosterRequest(row)
		if req.Name == "" && req.Email == "" {
			continue
		}

		if err := s.validator.Validate(req); err != nil {
			summary.Skipped = append(summary.Skipped, models.ImportIssue{Row: rowNum, Email: req.Email, Reason: err.Error()})
			continue
		}

		user := &models.User{
			Name:  req.Name,
			Email: normalizeEmail(req.Email),
			Role:  models.UserRole(strings.ToUpper(req.Role)),
		}
		enrolled := false
		err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
			if err := s.createUser(ctx, tx, user, req.Password); err != nil {
				return err
			}
			if classeID != nil && user.Role == models.RoleStudent {
				if err := enroll(ctx, tx, *classeID, user.ID); err != nil {
					return err
				}
				enrolled = true
			}
			return nil
		})
		if err != nil {
			mapped := mapRepositoryError(err, nil, "import user")
			if _, ok := KindOf(mapped); !ok {
				return summary, mapped
			}
			summary.Skipped = append(summary.Skipped, models.ImportIssue{Row: rowNum, Email: req.Email, Reason: reasonOf(mapped)})
			continue
		}

		summary.Created++
		if enrolled {
			summary.Enrolled++
		}
		s.publish(ctx, events.TopicUserCreated, events.UserCreatedEvent{UserID: user.ID, Role: string(user.Role)})
	}

	s.logger.Info("Import finished", "created", summary.Created, "enrolled", summary.Enrolled, "skipped", len(summary.Skipped))
	return summary, nil
}

// readRoster returns the data rows of the first sheet
func readRoster(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) <= 1 {
		return nil, nil
	}
	return rows[1:], nil
}

func rosterRequest(row []string) *CreateUserRequest {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	role := cell(colRole)
	if role == "" {
		role = string(models.RoleStudent)
	}
	return &CreateUserRequest{
		Name:     cell(colName),
		Email:    cell(colEmail),
		Password: cell(colPassword),
		Role:     role,
	}
}

func reasonOf(err error) string {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Message
	}
	return err.Error()
}
