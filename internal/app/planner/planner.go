package planner

import (
	"errors"
	"os"
	"path/filepath"
	"syscall"

	"github.com/John-Robertt/sheetsort/internal/domain"
	"github.com/John-Robertt/sheetsort/internal/infra/fsx"
)

// ReadDestState 读取目标文件现状（只做 stat 与摘要比对，不写入）。
//
// - 目标不存在（含某级祖先不是目录）：DestAbsent
// - 目标是目录：返回 *fsx.PathTypeConflictError
// - 大小一致且 BLAKE3 摘要一致：DestIdentical，否则 DestDiffers
func ReadDestState(srcAbs, dstAbs string) (domain.DestState, error) {
	fi, err := os.Lstat(dstAbs)
	if err != nil {
		if os.IsNotExist(err) || errors.Is(err, syscall.ENOTDIR) {
			return domain.DestAbsent, nil
		}
		return "", err
	}
	if fi.IsDir() {
		return "", &fsx.PathTypeConflictError{Path: dstAbs, Want: "file", Got: "dir"}
	}

	same, err := fsx.SameContent(srcAbs, dstAbs)
	if err != nil {
		return "", err
	}
	if same {
		return domain.DestIdentical, nil
	}
	return domain.DestDiffers, nil
}

// PlanCopy 基于分类结果生成确定性的复制计划（不做任何写入）。
// 目标文件名保持原文件名：<root>/<industry>/<module>/<client>/<name>。
func PlanCopy(targetRoot string, rec domain.FileRecord, cls domain.Classification) (domain.CopyPlan, error) {
	dest := cls.Destination()
	dstDir := dest.Dir(targetRoot)
	dstAbs := filepath.Join(dstDir, rec.Name)

	st, err := ReadDestState(rec.AbsPath, dstAbs)
	if err != nil {
		return domain.CopyPlan{}, err
	}

	return domain.CopyPlan{
		Record:      rec,
		Destination: dest,
		DstDir:      dstDir,
		DstAbs:      dstAbs,
		State:       st,
	}, nil
}
