package web

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/dgnsrekt/pang/internal/analysis"
	"github.com/dgnsrekt/pang/internal/snapshot"
	"github.com/dgnsrekt/pang/internal/types"
)

func snapshotImageURL(id string) string { return "/api/v1/snapshots/" + id + "/image" }

func registerSnapshotHandlers(api huma.API, deps Deps) {
	type takeSnapshotOutput struct {
		Body struct {
			Snapshot snapshot.Meta `json:"snapshot"`
			URL      string        `json:"url"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "take-snapshot", Method: http.MethodPost, Path: "/api/v1/snapshots", Summary: "Fetch analysis and store the rendered chart", Tags: []string{"Snapshots"}, DefaultStatus: http.StatusCreated},
		func(ctx context.Context, input *struct {
			Body struct {
				Ticker string `json:"ticker" minLength:"1" doc:"Stock ticker symbol"`
				Period string `json:"period,omitempty" doc:"History window; defaults to 1mo"`
				Format string `json:"format,omitempty" enum:"png,svg" default:"png" doc:"Image format"`
				Notes  string `json:"notes,omitempty" doc:"Free-form annotation for the snapshot"`
			}
		}) (*takeSnapshotOutput, error) {
			format, err := analysis.ParseFormat(input.Body.Format)
			if err != nil {
				return nil, huma.Error400BadRequest(err.Error())
			}
			q := analysis.Normalize(types.AnalysisQuery{Ticker: input.Body.Ticker, Period: input.Body.Period})
			meta, _, err := deps.Charts.CaptureChart(ctx, q, format, input.Body.Notes)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &takeSnapshotOutput{}
			out.Body.Snapshot = meta
			out.Body.URL = snapshotImageURL(meta.ID)
			return out, nil
		})

	type listSnapshotsOutput struct {
		Body struct {
			Snapshots []snapshot.Meta `json:"snapshots"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "list-snapshots", Method: http.MethodGet, Path: "/api/v1/snapshots", Summary: "List snapshots", Tags: []string{"Snapshots"}},
		func(ctx context.Context, input *struct{}) (*listSnapshotsOutput, error) {
			metas, err := deps.Charts.List()
			if err != nil {
				return nil, mapErr(err)
			}
			out := &listSnapshotsOutput{}
			out.Body.Snapshots = metas
			if out.Body.Snapshots == nil {
				out.Body.Snapshots = []snapshot.Meta{}
			}
			return out, nil
		})

	type snapshotIDInput struct {
		SnapshotID string `path:"snapshot_id"`
	}
	type getSnapshotOutput struct {
		Body snapshot.Meta
	}
	huma.Register(api, huma.Operation{OperationID: "get-snapshot", Method: http.MethodGet, Path: "/api/v1/snapshots/{snapshot_id}", Summary: "Get snapshot metadata", Tags: []string{"Snapshots"}},
		func(ctx context.Context, input *snapshotIDInput) (*getSnapshotOutput, error) {
			meta, err := deps.Charts.Get(input.SnapshotID)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &getSnapshotOutput{}
			out.Body = meta
			return out, nil
		})

	type snapshotImageOutput struct {
		ContentType string `header:"Content-Type"`
		Body        []byte
	}
	huma.Register(api, huma.Operation{OperationID: "get-snapshot-image", Method: http.MethodGet, Path: "/api/v1/snapshots/{snapshot_id}/image", Summary: "Get snapshot image", Tags: []string{"Snapshots"}},
		func(ctx context.Context, input *snapshotIDInput) (*snapshotImageOutput, error) {
			data, format, err := deps.Charts.ReadImage(input.SnapshotID)
			if err != nil {
				return nil, mapErr(err)
			}
			return &snapshotImageOutput{ContentType: analysis.Format(format).ContentType(), Body: data}, nil
		})

	type deleteSnapshotOutput struct {
		Body struct {
			Status string `json:"status"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "delete-snapshot", Method: http.MethodDelete, Path: "/api/v1/snapshots/{snapshot_id}", Summary: "Delete snapshot", Tags: []string{"Snapshots"}},
		func(ctx context.Context, input *snapshotIDInput) (*deleteSnapshotOutput, error) {
			if err := deps.Charts.Delete(input.SnapshotID); err != nil {
				return nil, mapErr(err)
			}
			out := &deleteSnapshotOutput{}
			out.Body.Status = "deleted"
			return out, nil
		})
}
