package config

// Sample is the configuration written by `hookshot sample-config`: basic
// hygiene hooks plus a formatting composer, a style checker and a docstring
// checker, all pinned. Kept as a literal so the output is byte-stable.
const Sample = `repos:
  - repo: https://github.com/pre-commit/pre-commit-hooks
    rev: v4.0.1
    hooks:
      - id: check-docstring-first
      - id: check-toml
      - id: check-yaml
        exclude: packaging/.*
        args:
          - --allow-multiple-documents
      - id: mixed-line-ending
        args:
          - --fix=lf
      - id: trailing-whitespace
      - id: end-of-file-fixer

  - repo: https://github.com/omnilib/ufmt
    rev: v1.3.2
    hooks:
      - id: ufmt
        additional_dependencies:
          - black == 22.3.0
          - usort == 1.0.2

  - repo: https://github.com/PyCQA/flake8
    rev: 5.0.4
    hooks:
      - id: flake8
        args:
          - --config=setup.cfg

  - repo: https://github.com/PyCQA/pydocstyle
    rev: 6.1.1
    hooks:
      - id: pydocstyle
`
