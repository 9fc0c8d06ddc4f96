package usecase

import (
	"context"
	"fmt"

	"sealed-mail/internal/domain"
	"sealed-mail/internal/middleware"
)

// assembleListResult はバックエンドのページを順に開封し、ListAPIResult を組み立てる。
// 項目単位の開封失敗は Failed に振り分け、構造的な失敗とキャンセルは呼び出し全体を失敗させる。
func assembleListResult[R, T, P any](
	ctx context.Context,
	page []R,
	nextToken *string,
	unseal func(context.Context, R) (T, error),
	partial func(R) P,
) (domain.ListAPIResult[T, P], error) {
	items := make([]T, 0, len(page))
	var failed []domain.PartialResult[P]

	for _, raw := range page {
		if err := ctx.Err(); err != nil {
			return domain.ListAPIResult[T, P]{}, err
		}
		item, err := unseal(ctx, raw)
		if err != nil {
			if isCancellation(err) || isStructural(err) {
				return domain.ListAPIResult[T, P]{}, err
			}
			failed = append(failed, domain.PartialResult[P]{Partial: partial(raw), Cause: err})
			continue
		}
		items = append(items, item)
	}

	if len(failed) == 0 {
		return domain.NewListSuccess[T, P](items, nextToken), nil
	}
	return domain.NewListPartial(items, failed, nextToken), nil
}

// assembleBatchResult はバックエンドの一括操作結果を BatchOperationResult に変換する。
// PARTIAL の場合のみ成功・失敗の一覧を必須とし、それ以外の組み合わせは Unknown とする。
func assembleBatchResult[RS, RF, S, F any](
	d domain.ErrorDomain,
	status string,
	successes []RS,
	failures []RF,
	mapSuccess func(RS) S,
	mapFailure func(RF) F,
) (domain.BatchOperationResult[S, F], error) {
	switch domain.BatchOperationStatus(status) {
	case domain.BatchOperationStatusSuccess, domain.BatchOperationStatusFailure:
		return domain.BatchOperationResult[S, F]{Status: domain.BatchOperationStatus(status)}, nil
	case domain.BatchOperationStatusPartial:
		if successes == nil || failures == nil {
			return domain.BatchOperationResult[S, F]{}, domain.NewError(d, domain.ErrUnknown,
				"partial result without success and failure values", nil)
		}
		result := domain.BatchOperationResult[S, F]{
			Status:        domain.BatchOperationStatusPartial,
			SuccessValues: make([]S, 0, len(successes)),
			FailureValues: make([]F, 0, len(failures)),
		}
		for _, s := range successes {
			result.SuccessValues = append(result.SuccessValues, mapSuccess(s))
		}
		for _, f := range failures {
			result.FailureValues = append(result.FailureValues, mapFailure(f))
		}
		return result, nil
	}
	return domain.BatchOperationResult[S, F]{}, domain.NewError(d, domain.ErrUnknown,
		fmt.Sprintf("unexpected batch status %q", status), nil)
}

// batchFromOutcomes はクライアント側で実行した一括操作の結果をまとめる。
func batchFromOutcomes[S, F any](successes []S, failures []F) domain.BatchOperationResult[S, F] {
	switch {
	case len(failures) == 0:
		return domain.BatchOperationResult[S, F]{Status: domain.BatchOperationStatusSuccess}
	case len(successes) == 0:
		return domain.BatchOperationResult[S, F]{Status: domain.BatchOperationStatusFailure}
	}
	return domain.BatchOperationResult[S, F]{
		Status:        domain.BatchOperationStatusPartial,
		SuccessValues: successes,
		FailureValues: failures,
	}
}

// batchAuditResult は一括操作の結果を監査ログの result に変換する。
func batchAuditResult(status domain.BatchOperationStatus, err error) string {
	if err != nil {
		return middleware.ResultFailure
	}
	switch status {
	case domain.BatchOperationStatusSuccess:
		return middleware.ResultSuccess
	case domain.BatchOperationStatusPartial:
		return middleware.ResultPartial
	}
	return middleware.ResultFailure
}

func passthrough[T any](v T) T { return v }
