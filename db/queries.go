package db

import (
	_ "embed"
)

// Schema

//go:embed sql/create_tables.sql
var CreateTablesSQL string

// Video queries

//go:embed sql/insert_video.sql
var InsertVideoSQL string

//go:embed sql/select_video_by_id.sql
var SelectVideoByIDSQL string

//go:embed sql/select_video_by_url.sql
var SelectVideoByURLSQL string

//go:embed sql/select_videos.sql
var SelectVideosSQL string

// Comment queries

//go:embed sql/insert_comment.sql
var InsertCommentSQL string

//go:embed sql/select_comment_by_id.sql
var SelectCommentByIDSQL string

//go:embed sql/select_comments_by_video.sql
var SelectCommentsByVideoSQL string

//go:embed sql/update_comment_resolved.sql
var UpdateCommentResolvedSQL string

//go:embed sql/delete_comment.sql
var DeleteCommentSQL string

//go:embed sql/count_comments_by_video.sql
var CountCommentsByVideoSQL string
