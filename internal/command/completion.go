// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/hopeline/sitectl/internal/meta"
)

const bashCompletionScript = `# bash completion for sitectl
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_sitectl()
{
    local cur prev cmd
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "aq stq cq post serve cache completion --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
    local output="--attrs -a --color -c --filter -f --local -l --output -o --sort -s --titles -t --tldr --schema"
    local backend="--backend -b --url --api-key --timeout --bucket --prefix --region --profile --endpoint --dsn"

    case "$cmd" in
        aq|stq|cq)
            local opts="$output $backend"
            ;;
        post)
            local opts="--author --body $output $backend"
            ;;
        serve)
            local opts="--addr --coalesce --admin-token --articles-ttl --stats-ttl --comments-ttl $backend"
            ;;
        cache)
            if [[ ${COMP_CWORD} -eq 2 ]]; then
                COMPREPLY=( $(compgen -W "info clear invalidate" -- "$cur") )
                return 0
            fi
            if [[ ${COMP_WORDS[2]} == "invalidate" && ${COMP_CWORD} -eq 3 ]]; then
                COMPREPLY=( $(compgen -W "articles stats comments" -- "$cur") )
                return 0
            fi
            local opts="--server --admin-token --output -o --titles -t --color -c"
            ;;
        completion)
            COMPREPLY=( $(compgen -W "bash zsh" -- "$cur") )
            return 0
            ;;
    esac

    case "$prev" in
        --output|-o)
            COMPREPLY=( $(compgen -W "text json yaml raw" -- "$cur") )
            return 0
            ;;
        --backend|-b)
            COMPREPLY=( $(compgen -W "rest s3 sqlite" -- "$cur") )
            return 0
            ;;
        --dsn)
            COMPREPLY=( $(compgen -f -- "$cur") )
            return 0
            ;;
    esac

    COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
    return 0
}

complete -F _sitectl sitectl
`

const zshCompletionScript = `#compdef sitectl

_sitectl() {
  local -a cmds
  cmds=(
    'aq:article query'
    'stq:article stats query'
    'cq:comment query'
    'post:post a comment on an article'
    'serve:serve the cached content API'
    'cache:inspect or reset a running server cache'
    'completion:generate shell completion script'
  )

  local -a output backend
  output=(
    '(-a --attrs)'{-a,--attrs}'[attributes to include]:attrs'
    '(-c --color)'{-c,--color}'[enable colored text]'
    '(-f --filter)'{-f,--filter}'[filters to apply]:filters'
    '(-l --local)'{-l,--local}'[local timestamps]'
    '(-o --output)'{-o,--output}'[output format]:format:(text json yaml raw)'
    '(-s --sort)'{-s,--sort}'[sort attributes]:attrs'
    '(-t --titles)'{-t,--titles}'[show titles]'
    '--schema[dump schema]'
    '--tldr[show tldr page]'
  )
  backend=(
    '(-b --backend)'{-b,--backend}'[content backend]:backend:(rest s3 sqlite)'
    '--url[REST API base URL]:url'
    '--api-key[REST API key]:key'
    '--timeout[REST request timeout]:duration'
    '--bucket[S3 bucket]:bucket'
    '--prefix[S3 key prefix]:prefix'
    '--region[AWS region]:region'
    '--profile[AWS profile]:profile'
    '--endpoint[S3 endpoint]:url'
    '--dsn[SQLite file]:file:_files'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'sitectl commands' cmds
    return
  fi

  case $words[2] in
    aq)
      _arguments -C $output $backend '::id or slug'
      ;;
    stq|cq)
      _arguments -C $output $backend ':article id'
      ;;
    post)
      _arguments -C $output $backend \
        '--author[comment author]:name' \
        '--body[comment text]:text' \
        ':article id'
      ;;
    serve)
      _arguments -C $backend \
        '--addr[listen address]:addr' \
        '--coalesce[share concurrent fetches]' \
        '--admin-token[cache admin token]:token' \
        '--articles-ttl[article list ttl]:duration' \
        '--stats-ttl[stats ttl]:duration' \
        '--comments-ttl[comments ttl]:duration'
      ;;
    cache)
      _arguments -C \
        '--server[server URL]:url' \
        '--admin-token[cache admin token]:token' \
        '1: :(info clear invalidate)' \
        '2: :(articles stats comments)'
      ;;
    completion)
      _arguments '1: :((bash zsh))'
      ;;
  esac
}

if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _sitectl sitectl
`

func CompletionCommandAction(ctx context.Context, cmd *cli.Command) error {
	shell := cmd.Args().First()
	if shell == "" {
		sh := os.Getenv("SHELL")
		switch {
		case strings.HasSuffix(sh, "zsh"):
			shell = "zsh"
		case strings.HasSuffix(sh, "bash"):
			shell = "bash"
		}
	}

	w := writer(cmd)
	switch shell {
	case "bash":
		fmt.Fprint(w, bashCompletionScript)
	case "zsh":
		fmt.Fprint(w, zshCompletionScript)
	default:
		return fmt.Errorf("usage: sitectl completion [bash|zsh]")
	}
	return nil
}

func CompletionCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "sitectl completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: CompletionCommandAction,
	}
}
