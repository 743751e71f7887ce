package graphql

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/graphql-go/graphql"

	"github.com/noah-isme/classroom-go-api/internal/dto"
	"github.com/noah-isme/classroom-go-api/internal/models"
	"github.com/noah-isme/classroom-go-api/internal/service"
)

// Resolver bridges the GraphQL schema to the lifecycle services. Both API
// surfaces go through the same services, so their contracts stay identical.
type Resolver struct {
	Auth        service.AuthService
	Assignments service.AssignmentService
	Submissions service.SubmissionService
}

var errAuthenticationRequired = errors.New("authentication required")

// NewSchema builds the executable schema mirroring the REST subset: query
// assignment(id), mutations login, createAssignment and submitAssignment.
func NewSchema(r *Resolver) (graphql.Schema, error) {
	roleEnum := graphql.NewEnum(graphql.EnumConfig{
		Name: "Role",
		Values: graphql.EnumValueConfigMap{
			"TUTOR":   &graphql.EnumValueConfig{Value: models.RoleTutor},
			"STUDENT": &graphql.EnumValueConfig{Value: models.RoleStudent},
		},
	})

	userType := graphql.NewObject(graphql.ObjectConfig{
		Name: "User",
		Fields: graphql.Fields{
			"id":       &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"username": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"role":     &graphql.Field{Type: graphql.NewNonNull(roleEnum)},
		},
	})

	rosterStudentType := graphql.NewObject(graphql.ObjectConfig{
		Name: "RosterStudent",
		Fields: graphql.Fields{
			"id":       &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"username": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"status":   &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	submissionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Submission",
		Fields: graphql.Fields{
			"id":       &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"remark":   &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"grade":    &graphql.Field{Type: graphql.String},
			"feedback": &graphql.Field{Type: graphql.String},
			"gradedAt": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					submission, ok := p.Source.(dto.SubmissionResponse)
					if !ok || submission.GradedAt == nil {
						return nil, nil
					}
					return submission.GradedAt.Format(time.RFC3339), nil
				},
			},
			"student": &graphql.Field{Type: userType},
		},
	})

	assignmentType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Assignment",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"description": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"publishedAt": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					assignment, ok := p.Source.(dto.AssignmentResponse)
					if !ok {
						return nil, nil
					}
					return assignment.PublishedAt.Format(time.RFC3339), nil
				},
			},
			"deadline": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					assignment, ok := p.Source.(dto.AssignmentResponse)
					if !ok || assignment.Deadline == nil {
						return nil, nil
					}
					return assignment.Deadline.Format(time.RFC3339), nil
				},
			},
			"students":    &graphql.Field{Type: graphql.NewList(rosterStudentType)},
			"submissions": &graphql.Field{Type: graphql.NewList(submissionType)},
		},
	})

	authPayloadType := graphql.NewObject(graphql.ObjectConfig{
		Name: "AuthPayload",
		Fields: graphql.Fields{
			"token": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"user":  &graphql.Field{Type: graphql.NewNonNull(userType)},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"assignment": &graphql.Field{
				Type: assignmentType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					identity, ok := IdentityFrom(p.Context)
					if !ok {
						return nil, errAuthenticationRequired
					}

					id, err := coerceID(p.Args["id"])
					if err != nil {
						return nil, err
					}

					return r.Assignments.Details(p.Context, identity.UserID, identity.Role, id)
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"login": &graphql.Field{
				Type: authPayloadType,
				Args: graphql.FieldConfigArgument{
					"username": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"role":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(roleEnum)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					username, _ := p.Args["username"].(string)
					role, _ := p.Args["role"].(string)

					return r.Auth.Login(p.Context, dto.LoginRequest{Username: username, Role: role})
				},
			},
			"createAssignment": &graphql.Field{
				Type: assignmentType,
				Args: graphql.FieldConfigArgument{
					"description": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"studentIds":  &graphql.ArgumentConfig{Type: graphql.NewList(graphql.ID)},
					"publishedAt": &graphql.ArgumentConfig{Type: graphql.String},
					"deadline":    &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					identity, ok := IdentityFrom(p.Context)
					if !ok {
						return nil, errAuthenticationRequired
					}
					if identity.Role != models.RoleTutor {
						return nil, errors.New("only tutors can create assignments")
					}

					payload := dto.AssignmentCreateRequest{}
					payload.Description, _ = p.Args["description"].(string)
					payload.PublishedAt, _ = p.Args["publishedAt"].(string)
					payload.Deadline, _ = p.Args["deadline"].(string)

					if raw, ok := p.Args["studentIds"].([]interface{}); ok {
						ids, err := coerceIDList(raw)
						if err != nil {
							return nil, err
						}
						payload.StudentIDs = ids
					}

					return r.Assignments.Create(p.Context, identity.UserID, payload)
				},
			},
			"submitAssignment": &graphql.Field{
				Type: submissionType,
				Args: graphql.FieldConfigArgument{
					"assignmentId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"remark":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					identity, ok := IdentityFrom(p.Context)
					if !ok {
						return nil, errAuthenticationRequired
					}
					if identity.Role != models.RoleStudent {
						return nil, errors.New("only students can submit")
					}

					assignmentID, err := coerceID(p.Args["assignmentId"])
					if err != nil {
						return nil, err
					}

					remark, _ := p.Args["remark"].(string)

					return r.Submissions.Submit(p.Context, identity.UserID, dto.SubmissionCreateRequest{
						AssignmentID: assignmentID,
						Remark:       remark,
					})
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}

func coerceID(value interface{}) (uint, error) {
	switch v := value.(type) {
	case string:
		parsed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid identifier %q", v)
		}
		return uint(parsed), nil
	case int:
		if v < 0 {
			return 0, fmt.Errorf("invalid identifier %d", v)
		}
		return uint(v), nil
	case float64:
		if v < 0 {
			return 0, fmt.Errorf("invalid identifier %v", v)
		}
		return uint(v), nil
	default:
		return 0, fmt.Errorf("invalid identifier")
	}
}

func coerceIDList(values []interface{}) ([]uint, error) {
	ids := make([]uint, 0, len(values))
	for _, value := range values {
		id, err := coerceID(value)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
